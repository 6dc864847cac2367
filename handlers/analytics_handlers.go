// api/handlers/analytics_handlers.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/analytics"
	"portfolio/api/models"
	"portfolio/api/session"
)

// EventRecorder is the write side of the analytics store.
type EventRecorder interface {
	InsertPageView(ctx context.Context, ev *models.PageViewEvent) error
	InsertBlogView(ctx context.Context, ev *models.BlogViewEvent) error
	TouchSession(ctx context.Context, sess *models.Session) error
}

type Summarizer interface {
	Summarize(ctx context.Context, period analytics.Period) (*models.AnalyticsSummary, error)
}

type AnalyticsHandlers struct {
	Recorder   EventRecorder
	Summarizer Summarizer
	Sessions   session.Provider
}

func NewAnalyticsHandlers(recorder EventRecorder, summarizer Summarizer, sessions session.Provider) *AnalyticsHandlers {
	if sessions == nil {
		sessions = session.ClientProvider{}
	}
	return &AnalyticsHandlers{
		Recorder:   recorder,
		Summarizer: summarizer,
		Sessions:   sessions,
	}
}

// userAgent prefers the value the tracker reported and falls back to the
// request header.
func userAgent(c *gin.Context, reported string) string {
	if reported != "" {
		return reported
	}
	return c.Request.UserAgent()
}

func (h *AnalyticsHandlers) TrackPageView(c *gin.Context) {
	var req models.PageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Page path is required", "details": err.Error()})
		return
	}

	sessionID, err := h.Sessions.SessionID(c, req.SessionID)
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ev := &models.PageViewEvent{
		Path:      req.PagePath,
		Title:     req.PageTitle,
		SessionID: sessionID,
		UserAgent: userAgent(c, req.UserAgent),
		IPAddress: c.ClientIP(),
		Referrer:  req.Referrer,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Recorder.InsertPageView(ctx, ev); err != nil {
		slog.Error("error inserting page view", "path", ev.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track page view"})
		return
	}

	if sessionID != "" {
		sess := &models.Session{
			SessionID: sessionID,
			UserAgent: ev.UserAgent,
			IPAddress: ev.IPAddress,
			LastVisit: ev.OccurredAt,
		}
		// The view is already recorded; a failed session touch only costs a visitor count.
		if err := h.Recorder.TouchSession(ctx, sess); err != nil {
			slog.Warn("error updating session", "session_id", sessionID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AnalyticsHandlers) TrackBlogView(c *gin.Context) {
	var req models.BlogViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post slug is required", "details": err.Error()})
		return
	}

	sessionID, err := h.Sessions.SessionID(c, req.SessionID)
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ev := &models.BlogViewEvent{
		PostSlug:         req.PostSlug,
		PostID:           req.PostID,
		PostTitle:        req.PostTitle,
		SessionID:        sessionID,
		UserAgent:        userAgent(c, req.UserAgent),
		IPAddress:        c.ClientIP(),
		Referrer:         req.Referrer,
		TimeSpentSeconds: req.TimeSpentSeconds,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Recorder.InsertBlogView(ctx, ev); err != nil {
		slog.Error("error inserting blog post view", "slug", ev.PostSlug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track blog post view"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetStats serves the dashboard summary. A missing period means 7d; any
// other value outside 7d, 30d, 90d and all is rejected.
func (h *AnalyticsHandlers) GetStats(c *gin.Context) {
	period, err := analytics.ParsePeriod(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be one of 7d, 30d, 90d, all"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	summary, err := h.Summarizer.Summarize(ctx, period)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Error("analytics summary timed out", "period", period, "error", err)
		} else {
			slog.Error("error fetching analytics", "period", period, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
