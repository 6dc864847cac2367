// api/models/event.go
package models

import "time"

// PageViewEvent is one recorded page navigation. Rows are append-only.
type PageViewEvent struct {
	ID         string    `json:"id"`
	Path       string    `json:"pagePath"`
	Title      string    `json:"pageTitle,omitempty"`
	SessionID  string    `json:"sessionId,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// BlogViewEvent is one recorded blog post visit. A visit may produce two rows:
// one on entry and one carrying the measured dwell time.
type BlogViewEvent struct {
	ID               string    `json:"id"`
	PostSlug         string    `json:"postSlug"`
	PostID           string    `json:"postId,omitempty"`
	PostTitle        string    `json:"postTitle,omitempty"`
	SessionID        string    `json:"sessionId,omitempty"`
	UserAgent        string    `json:"userAgent,omitempty"`
	IPAddress        string    `json:"ipAddress,omitempty"`
	Referrer         string    `json:"referrer,omitempty"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	OccurredAt       time.Time `json:"occurredAt"`
}

type Session struct {
	SessionID  string    `json:"sessionId"`
	UserAgent  string    `json:"userAgent,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	FirstVisit time.Time `json:"firstVisit"`
	LastVisit  time.Time `json:"lastVisit"`
}

// KeyHit is a single enumerated event row reduced to its grouping key
// (page path or post slug) and the title recorded with it, if any.
type KeyHit struct {
	Key   string
	Title string
}
