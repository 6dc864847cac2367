package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// schema is written for Postgres. SQLite gets the same statements with its
// own column type names so the driver maps timestamps back to time.Time.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS page_views (
		id TEXT PRIMARY KEY,
		page_path TEXT NOT NULL,
		page_title TEXT,
		user_agent TEXT,
		ip_address TEXT,
		referrer TEXT,
		session_id TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_page_views_created_at ON page_views (created_at)`,
	`CREATE TABLE IF NOT EXISTS blog_post_views (
		id TEXT PRIMARY KEY,
		post_id TEXT,
		post_slug TEXT NOT NULL,
		post_title TEXT,
		user_agent TEXT,
		ip_address TEXT,
		referrer TEXT,
		session_id TEXT,
		time_spent_seconds INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_blog_post_views_created_at ON blog_post_views (created_at)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		user_agent TEXT,
		ip_address TEXT,
		first_visit TIMESTAMPTZ NOT NULL,
		last_visit TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_first_visit ON sessions (first_visit)`,
	`CREATE TABLE IF NOT EXISTS blog_posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		excerpt TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		content_format TEXT NOT NULL DEFAULT 'markdown',
		tags JSONB NOT NULL,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		read_time INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS blog_images (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES blog_posts (id) ON DELETE CASCADE,
		image_url TEXT NOT NULL,
		alt_text TEXT NOT NULL DEFAULT '',
		caption TEXT,
		order_index INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_blog_images_post_id ON blog_images (post_id, order_index)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		tech_stack JSONB NOT NULL,
		live_link TEXT,
		github_link TEXT,
		image_url TEXT,
		tags JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

var sqliteTypes = strings.NewReplacer(
	"TIMESTAMPTZ", "TIMESTAMP",
	"JSONB", "TEXT",
)

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	for _, stmt := range schema {
		if driver == DriverSQLite {
			stmt = sqliteTypes.Replace(stmt)
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
