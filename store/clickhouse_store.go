// api/store/clickhouse_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"portfolio/api/database"
	"portfolio/api/models"
)

const (
	eventTypePageView = "page_view"
	eventTypeBlogView = "blog_view"
)

var clickHouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS analytics_events (
		event_id String,
		event_type LowCardinality(String),
		session_id String,
		timestamp DateTime64(3, 'UTC'),
		page_path String,
		page_title String,
		post_id String,
		post_slug String,
		post_title String,
		referrer String,
		user_agent String,
		ip_address String,
		time_spent_seconds UInt32
	) ENGINE = MergeTree
	ORDER BY (event_type, timestamp, event_id)`,
	`CREATE TABLE IF NOT EXISTS analytics_sessions (
		session_id String,
		user_agent String,
		ip_address String,
		first_visit DateTime64(3, 'UTC'),
		last_visit DateTime64(3, 'UTC')
	) ENGINE = ReplacingMergeTree(last_visit)
	ORDER BY session_id`,
}

// ClickHouseStore keeps the event tables in ClickHouse. Page and blog views
// share one wide table discriminated by event_type.
type ClickHouseStore struct {
	DB  *database.ClickHouseClient
	now func() time.Time
}

type eventRow struct {
	EventID          string
	EventType        string
	SessionID        string
	Timestamp        time.Time
	PagePath         string
	PageTitle        string
	PostID           string
	PostSlug         string
	PostTitle        string
	Referrer         string
	UserAgent        string
	IPAddress        string
	TimeSpentSeconds uint32
}

func NewClickHouseStore(chClient *database.ClickHouseClient) *ClickHouseStore {
	return &ClickHouseStore{
		DB:  chClient,
		now: time.Now,
	}
}

func (s *ClickHouseStore) Migrate(ctx context.Context) error {
	for _, stmt := range clickHouseSchema {
		if err := s.DB.Conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate clickhouse: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStore) InsertPageView(ctx context.Context, ev *models.PageViewEvent) error {
	if ev.ID == "" {
		ev.ID = newID()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.now()
	}
	return s.insertEvents(ctx, []eventRow{{
		EventID:   ev.ID,
		EventType: eventTypePageView,
		SessionID: ev.SessionID,
		Timestamp: ev.OccurredAt.UTC(),
		PagePath:  ev.Path,
		PageTitle: ev.Title,
		Referrer:  ev.Referrer,
		UserAgent: ev.UserAgent,
		IPAddress: ev.IPAddress,
	}})
}

func (s *ClickHouseStore) InsertBlogView(ctx context.Context, ev *models.BlogViewEvent) error {
	if ev.ID == "" {
		ev.ID = newID()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.now()
	}
	return s.insertEvents(ctx, []eventRow{{
		EventID:          ev.ID,
		EventType:        eventTypeBlogView,
		SessionID:        ev.SessionID,
		Timestamp:        ev.OccurredAt.UTC(),
		PagePath:         "/blog/" + ev.PostSlug,
		PostID:           ev.PostID,
		PostSlug:         ev.PostSlug,
		PostTitle:        ev.PostTitle,
		Referrer:         ev.Referrer,
		UserAgent:        ev.UserAgent,
		IPAddress:        ev.IPAddress,
		TimeSpentSeconds: uint32(max(ev.TimeSpentSeconds, 0)),
	}})
}

func (s *ClickHouseStore) insertEvents(ctx context.Context, events []eventRow) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			event_id, event_type, session_id, timestamp, page_path, page_title, post_id, post_slug,
			post_title, referrer, user_agent, ip_address, time_spent_seconds
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.EventType,
			event.SessionID,
			event.Timestamp,
			event.PagePath,
			event.PageTitle,
			event.PostID,
			event.PostSlug,
			event.PostTitle,
			event.Referrer,
			event.UserAgent,
			event.IPAddress,
			event.TimeSpentSeconds,
		)
		if err != nil {
			return fmt.Errorf("failed to append event %s to batch: %w", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	slog.Debug("inserted analytics events", "count", len(events))
	return nil
}

// TouchSession writes a new version of the session row. The table collapses
// versions by last_visit, so the first visit is carried over from the
// existing row.
func (s *ClickHouseStore) TouchSession(ctx context.Context, sess *models.Session) error {
	if sess.SessionID == "" {
		return errors.New("session id is empty")
	}
	seen := sess.LastVisit
	if seen.IsZero() {
		seen = s.now()
	}
	seen = seen.UTC()

	firstVisit := seen
	userAgent, ipAddress := sess.UserAgent, sess.IPAddress
	var (
		existingFirst time.Time
		existingUA    string
		existingIP    string
	)
	err := s.DB.Conn.QueryRow(ctx, `
		SELECT first_visit, user_agent, ip_address FROM analytics_sessions FINAL
		WHERE session_id = ?
		LIMIT 1`, sess.SessionID,
	).Scan(&existingFirst, &existingUA, &existingIP)
	switch {
	case err == nil:
		firstVisit, userAgent, ipAddress = existingFirst, existingUA, existingIP
	case errors.Is(err, sql.ErrNoRows):
	default:
		return fmt.Errorf("failed to look up session %s: %w", sess.SessionID, err)
	}

	if err := s.DB.Conn.Exec(ctx, `
		INSERT INTO analytics_sessions (session_id, user_agent, ip_address, first_visit, last_visit)
		VALUES (?, ?, ?, ?, ?)`,
		sess.SessionID, userAgent, ipAddress, firstVisit, seen,
	); err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", sess.SessionID, err)
	}
	return nil
}

func (s *ClickHouseStore) CountPageViews(ctx context.Context, since time.Time) (int, error) {
	return s.count(ctx, `SELECT count() FROM analytics_events WHERE event_type = ? AND timestamp >= ?`,
		eventTypePageView, lowerBound(since))
}

func (s *ClickHouseStore) CountBlogViews(ctx context.Context, since time.Time) (int, error) {
	return s.count(ctx, `SELECT count() FROM analytics_events WHERE event_type = ? AND timestamp >= ?`,
		eventTypeBlogView, lowerBound(since))
}

func (s *ClickHouseStore) CountSessions(ctx context.Context, since time.Time) (int, error) {
	return s.count(ctx, `SELECT count() FROM analytics_sessions FINAL WHERE first_visit >= ?`, lowerBound(since))
}

func (s *ClickHouseStore) CountPageViewsBetween(ctx context.Context, start, end time.Time) (int, error) {
	return s.count(ctx, `
		SELECT count() FROM analytics_events
		WHERE event_type = ? AND timestamp >= ? AND timestamp <= ?`,
		eventTypePageView, start.UTC(), end.UTC())
}

func (s *ClickHouseStore) CountBlogViewsBetween(ctx context.Context, start, end time.Time) (int, error) {
	return s.count(ctx, `
		SELECT count() FROM analytics_events
		WHERE event_type = ? AND timestamp >= ? AND timestamp <= ?`,
		eventTypeBlogView, start.UTC(), end.UTC())
}

func (s *ClickHouseStore) ListPageViewKeys(ctx context.Context, since time.Time) ([]models.KeyHit, error) {
	return s.listKeys(ctx, `
		SELECT page_path, page_title FROM analytics_events
		WHERE event_type = ? AND timestamp >= ?
		ORDER BY timestamp, event_id`, eventTypePageView, lowerBound(since))
}

func (s *ClickHouseStore) ListBlogViewKeys(ctx context.Context, since time.Time) ([]models.KeyHit, error) {
	return s.listKeys(ctx, `
		SELECT post_slug, post_title FROM analytics_events
		WHERE event_type = ? AND timestamp >= ?
		ORDER BY timestamp, event_id`, eventTypeBlogView, lowerBound(since))
}

func (s *ClickHouseStore) count(ctx context.Context, query string, args ...any) (int, error) {
	var n uint64
	if err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return int(n), nil
}

func (s *ClickHouseStore) listKeys(ctx context.Context, query string, args ...any) ([]models.KeyHit, error) {
	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event keys: %w", err)
	}
	defer rows.Close()

	var hits []models.KeyHit
	for rows.Next() {
		var key, title string
		if err := rows.Scan(&key, &title); err != nil {
			return nil, fmt.Errorf("failed to scan event key: %w", err)
		}
		hits = append(hits, models.KeyHit{Key: key, Title: title})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event keys: %w", err)
	}
	return hits, nil
}
