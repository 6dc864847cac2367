package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ContentFormat records which editor produced a post body.
type ContentFormat string

const (
	// ContentFormatHTML is trusted rich-editor output and is rendered verbatim.
	ContentFormatHTML ContentFormat = "html"
	// ContentFormatMarkdown is the constrained markdown subset handled by the content formatter.
	ContentFormatMarkdown ContentFormat = "markdown"
)

// StringList is a list column stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

type BlogPost struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Excerpt       string        `json:"excerpt"`
	Content       string        `json:"content"`
	ContentFormat ContentFormat `json:"contentFormat"`
	Tags          StringList    `json:"tags"`
	Featured      bool          `json:"featured"`
	Published     bool          `json:"published"`
	ReadTime      int           `json:"readTime"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`

	// HTML is the rendered body. It is filled in by handlers, never stored.
	HTML string `json:"html,omitempty"`
}

type BlogImage struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	ImageURL   string    `json:"imageUrl"`
	AltText    string    `json:"altText"`
	Caption    string    `json:"caption,omitempty"`
	OrderIndex int       `json:"orderIndex"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TechStack   StringList `json:"techStack"`
	LiveLink    string     `json:"liveLink,omitempty"`
	GithubLink  string     `json:"githubLink,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Tags        StringList `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
