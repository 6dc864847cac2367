// Package analytics turns raw page-view, blog-view and session rows into the
// dashboard summary served by the stats endpoint.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"portfolio/api/models"
)

const (
	// TopLimit bounds the topPages and topBlogPosts rankings.
	TopLimit = 5
	// DailySeriesDays is the length of the daily series, independent of the period.
	DailySeriesDays = 7

	maxConcurrentReads = 4
)

// EventSource is the read side of the event store. A zero since means no
// lower bound. Between ranges are inclusive at both ends. List methods return
// rows in the order they were recorded.
type EventSource interface {
	CountPageViews(ctx context.Context, since time.Time) (int, error)
	CountBlogViews(ctx context.Context, since time.Time) (int, error)
	CountSessions(ctx context.Context, since time.Time) (int, error)
	ListPageViewKeys(ctx context.Context, since time.Time) ([]models.KeyHit, error)
	ListBlogViewKeys(ctx context.Context, since time.Time) ([]models.KeyHit, error)
	CountPageViewsBetween(ctx context.Context, start, end time.Time) (int, error)
	CountBlogViewsBetween(ctx context.Context, start, end time.Time) (int, error)
}

type Aggregator struct {
	source   EventSource
	location *time.Location
	now      func() time.Time
}

type Option func(*Aggregator)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLocation sets the location used to cut the daily series into calendar days.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.location = loc
		}
	}
}

func NewAggregator(source EventSource, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:   source,
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize reads the event tables for the period and builds the summary.
// Any failed read fails the whole call; partial summaries are never returned.
func (a *Aggregator) Summarize(ctx context.Context, period Period) (_ *models.AnalyticsSummary, err error) {
	started := time.Now()
	defer func() { observeSummarize(period, started, err) }()

	now := a.now()
	since := period.WindowStart(now)
	windows := DailyWindows(now, a.location, DailySeriesDays)

	var (
		totalPageViews int
		totalBlogViews int
		uniqueVisitors int
		pageHits       []models.KeyHit
		blogHits       []models.KeyHit
	)
	daily := make([]models.DailyStat, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	g.Go(func() error {
		n, err := a.source.CountPageViews(gctx, since)
		if err != nil {
			return fmt.Errorf("count page views: %w", err)
		}
		totalPageViews = n
		return nil
	})
	g.Go(func() error {
		n, err := a.source.CountBlogViews(gctx, since)
		if err != nil {
			return fmt.Errorf("count blog views: %w", err)
		}
		totalBlogViews = n
		return nil
	})
	g.Go(func() error {
		n, err := a.source.CountSessions(gctx, since)
		if err != nil {
			return fmt.Errorf("count sessions: %w", err)
		}
		uniqueVisitors = n
		return nil
	})
	g.Go(func() error {
		hits, err := a.source.ListPageViewKeys(gctx, since)
		if err != nil {
			return fmt.Errorf("list page views: %w", err)
		}
		pageHits = hits
		return nil
	})
	g.Go(func() error {
		hits, err := a.source.ListBlogViewKeys(gctx, since)
		if err != nil {
			return fmt.Errorf("list blog views: %w", err)
		}
		blogHits = hits
		return nil
	})

	for i, w := range windows {
		daily[i].Date = w.Date
		g.Go(func() error {
			n, err := a.source.CountPageViewsBetween(gctx, w.Start, w.End)
			if err != nil {
				return fmt.Errorf("count page views on %s: %w", w.Date, err)
			}
			daily[i].PageViews = n
			return nil
		})
		g.Go(func() error {
			n, err := a.source.CountBlogViewsBetween(gctx, w.Start, w.End)
			if err != nil {
				return fmt.Errorf("count blog views on %s: %w", w.Date, err)
			}
			daily[i].BlogViews = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &models.AnalyticsSummary{
		TotalPageViews: totalPageViews,
		TotalBlogViews: totalBlogViews,
		UniqueVisitors: uniqueVisitors,
		TopPages:       make([]models.TopPage, 0, TopLimit),
		TopBlogPosts:   make([]models.TopBlogPost, 0, TopLimit),
		DailyStats:     daily,
		Period:         string(period),
	}
	for _, r := range TopN(pageHits, TopLimit) {
		summary.TopPages = append(summary.TopPages, models.TopPage{Path: r.Key, Count: r.Count, Title: r.Title})
	}
	for _, r := range TopN(blogHits, TopLimit) {
		summary.TopBlogPosts = append(summary.TopBlogPosts, models.TopBlogPost{Slug: r.Key, Count: r.Count, Title: r.Title})
	}
	return summary, nil
}
