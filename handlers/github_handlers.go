package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/github"
)

type GitHubSource interface {
	Stats(ctx context.Context, username string) (*github.Stats, error)
	ContributionWeeks(ctx context.Context, username string) ([][]github.Day, error)
}

type GitHubHandlers struct {
	Source   GitHubSource
	Username string
}

func NewGitHubHandlers(source GitHubSource, username string) *GitHubHandlers {
	return &GitHubHandlers{Source: source, Username: username}
}

func noCache(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
}

// Stats never fails the request: upstream errors are reported in the body
// next to an empty calendar so the widget can still render.
func (h *GitHubHandlers) Stats(c *gin.Context) {
	noCache(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	stats, err := h.Source.Stats(ctx, h.Username)
	if err != nil {
		slog.Warn("github stats unavailable", "username", h.Username, "error", err)
		c.JSON(http.StatusOK, gin.H{
			"error":                 err.Error(),
			"contributionsWeeks":    [][]github.Day{},
			"contributionsThisYear": 0,
		})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *GitHubHandlers) Contributions(c *gin.Context) {
	noCache(c)

	username := c.Query("username")
	if username == "" {
		username = h.Username
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	weeks, err := h.Source.ContributionWeeks(ctx, username)
	if err != nil {
		if errors.Is(err, github.ErrNoToken) {
			c.JSON(http.StatusOK, gin.H{"weeks": [][]github.Day{}})
			return
		}
		slog.Error("github graphql error", "username", username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "GitHub GraphQL error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}
