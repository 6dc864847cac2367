// api/store/analytics_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"portfolio/api/models"
)

// AnalyticsStore keeps the raw event tables in the relational database and
// serves the aggregator's reads.
type AnalyticsStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db, now: time.Now}
}

func (s *AnalyticsStore) InsertPageView(ctx context.Context, ev *models.PageViewEvent) error {
	if ev.ID == "" {
		ev.ID = newID()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_views (id, page_path, page_title, user_agent, ip_address, referrer, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ev.ID, ev.Path, nullString(ev.Title), nullString(ev.UserAgent), nullString(ev.IPAddress),
		nullString(ev.Referrer), nullString(ev.SessionID), ev.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert page view: %w", err)
	}
	return nil
}

func (s *AnalyticsStore) InsertBlogView(ctx context.Context, ev *models.BlogViewEvent) error {
	if ev.ID == "" {
		ev.ID = newID()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blog_post_views (id, post_id, post_slug, post_title, user_agent, ip_address, referrer, session_id, time_spent_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ev.ID, nullString(ev.PostID), ev.PostSlug, nullString(ev.PostTitle), nullString(ev.UserAgent),
		nullString(ev.IPAddress), nullString(ev.Referrer), nullString(ev.SessionID), ev.TimeSpentSeconds,
		ev.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert blog post view: %w", err)
	}
	return nil
}

// TouchSession records a visit for sess.SessionID. The first visit creates the
// row; later visits only move last_visit forward.
func (s *AnalyticsStore) TouchSession(ctx context.Context, sess *models.Session) error {
	if sess.SessionID == "" {
		return errors.New("session id is empty")
	}
	seen := sess.LastVisit
	if seen.IsZero() {
		seen = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, user_agent, ip_address, first_visit, last_visit)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (session_id) DO UPDATE SET last_visit = excluded.last_visit`,
		sess.SessionID, nullString(sess.UserAgent), nullString(sess.IPAddress), seen.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", sess.SessionID, err)
	}
	return nil
}

func (s *AnalyticsStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var (
		sess      models.Session
		userAgent sql.NullString
		ipAddress sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, user_agent, ip_address, first_visit, last_visit
		FROM sessions WHERE session_id = $1`, sessionID,
	).Scan(&sess.SessionID, &userAgent, &ipAddress, &sess.FirstVisit, &sess.LastVisit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	sess.UserAgent = userAgent.String
	sess.IPAddress = ipAddress.String
	return &sess, nil
}

func (s *AnalyticsStore) CountPageViews(ctx context.Context, since time.Time) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM page_views WHERE created_at >= $1`, lowerBound(since))
}

func (s *AnalyticsStore) CountBlogViews(ctx context.Context, since time.Time) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM blog_post_views WHERE created_at >= $1`, lowerBound(since))
}

func (s *AnalyticsStore) CountSessions(ctx context.Context, since time.Time) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM sessions WHERE first_visit >= $1`, lowerBound(since))
}

func (s *AnalyticsStore) CountPageViewsBetween(ctx context.Context, start, end time.Time) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM page_views WHERE created_at >= $1 AND created_at <= $2`,
		start.UTC(), end.UTC())
}

func (s *AnalyticsStore) CountBlogViewsBetween(ctx context.Context, start, end time.Time) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM blog_post_views WHERE created_at >= $1 AND created_at <= $2`,
		start.UTC(), end.UTC())
}

func (s *AnalyticsStore) ListPageViewKeys(ctx context.Context, since time.Time) ([]models.KeyHit, error) {
	return s.listKeys(ctx, `
		SELECT page_path, page_title FROM page_views
		WHERE created_at >= $1
		ORDER BY created_at, id`, lowerBound(since))
}

func (s *AnalyticsStore) ListBlogViewKeys(ctx context.Context, since time.Time) ([]models.KeyHit, error) {
	return s.listKeys(ctx, `
		SELECT post_slug, post_title FROM blog_post_views
		WHERE created_at >= $1
		ORDER BY created_at, id`, lowerBound(since))
}

func (s *AnalyticsStore) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return int(n), nil
}

func (s *AnalyticsStore) listKeys(ctx context.Context, query string, args ...any) ([]models.KeyHit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event keys: %w", err)
	}
	defer rows.Close()

	var hits []models.KeyHit
	for rows.Next() {
		var (
			key   string
			title sql.NullString
		)
		if err := rows.Scan(&key, &title); err != nil {
			return nil, fmt.Errorf("failed to scan event key: %w", err)
		}
		hits = append(hits, models.KeyHit{Key: key, Title: title.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event keys: %w", err)
	}
	return hits, nil
}
