package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLDB_SQLiteMigrate(t *testing.T) {
	ctx := context.Background()
	client, err := NewSQLDB(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, Migrate(ctx, client.DB, client.Driver))
	// Migrations are idempotent.
	require.NoError(t, Migrate(ctx, client.DB, client.Driver))

	for _, table := range []string{"page_views", "blog_post_views", "sessions", "blog_posts", "blog_images", "projects", "contacts"} {
		var name string
		err := client.DB.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestNewSQLDB_EmptyDSN(t *testing.T) {
	_, err := NewSQLDB(context.Background(), DriverPostgres, "")
	assert.Error(t, err)
}
