package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/api/database"
	"portfolio/api/models"
)

func newTestDB(t *testing.T) *database.DBClient {
	t.Helper()
	ctx := context.Background()
	client, err := database.NewSQLDB(ctx, database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(client.Close)
	require.NoError(t, database.Migrate(ctx, client.DB, client.Driver))
	return client
}

func TestAnalyticsStore_SessionUpsertKeepsFirstVisit(t *testing.T) {
	ctx := context.Background()
	s := NewAnalyticsStore(newTestDB(t).DB)

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(3 * time.Hour)

	require.NoError(t, s.TouchSession(ctx, &models.Session{SessionID: "s1", UserAgent: "ua", LastVisit: first}))
	require.NoError(t, s.TouchSession(ctx, &models.Session{SessionID: "s1", UserAgent: "other", LastVisit: later}))

	sess, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sess.FirstVisit.Equal(first), "first visit %v", sess.FirstVisit)
	assert.True(t, sess.LastVisit.Equal(later), "last visit %v", sess.LastVisit)
	assert.Equal(t, "ua", sess.UserAgent)

	n, err := s.CountSessions(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalyticsStore_TouchSessionRequiresID(t *testing.T) {
	s := NewAnalyticsStore(newTestDB(t).DB)
	assert.Error(t, s.TouchSession(context.Background(), &models.Session{}))
}

func TestAnalyticsStore_CountsAndKeys(t *testing.T) {
	ctx := context.Background()
	s := NewAnalyticsStore(newTestDB(t).DB)
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	views := []models.PageViewEvent{
		{Path: "/old", Title: "Old", OccurredAt: base.Add(-48 * time.Hour)},
		{Path: "/a", Title: "A", OccurredAt: base},
		{Path: "/b", OccurredAt: base.Add(time.Minute)},
		{Path: "/a", Title: "A", OccurredAt: base.Add(2 * time.Minute)},
	}
	for i := range views {
		require.NoError(t, s.InsertPageView(ctx, &views[i]))
		assert.NotEmpty(t, views[i].ID)
	}
	require.NoError(t, s.InsertBlogView(ctx, &models.BlogViewEvent{
		PostSlug: "hello", PostTitle: "Hello", OccurredAt: base,
	}))

	total, err := s.CountPageViews(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	recent, err := s.CountPageViews(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, recent)

	blog, err := s.CountBlogViews(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, blog)

	day, err := s.CountPageViewsBetween(ctx, base, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, day, "both ends are inclusive")

	blogDay, err := s.CountBlogViewsBetween(ctx, base.Add(time.Second), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, blogDay)

	keys, err := s.ListPageViewKeys(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []models.KeyHit{
		{Key: "/a", Title: "A"},
		{Key: "/b", Title: ""},
		{Key: "/a", Title: "A"},
	}, keys)

	blogKeys, err := s.ListBlogViewKeys(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []models.KeyHit{{Key: "hello", Title: "Hello"}}, blogKeys)
}

func TestContentStore_PostLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewContentStore(newTestDB(t).DB)

	draft := &models.BlogPost{
		Title:         "Draft",
		Slug:          "draft",
		Content:       "# Draft",
		ContentFormat: models.ContentFormatMarkdown,
	}
	require.NoError(t, s.CreatePost(ctx, draft))
	published := &models.BlogPost{
		Title:         "Hello",
		Slug:          "hello",
		Content:       "<p>hi</p>",
		ContentFormat: models.ContentFormatHTML,
		Tags:          models.StringList{"go", "web"},
		Published:     true,
		ReadTime:      3,
	}
	require.NoError(t, s.CreatePost(ctx, published))

	all, err := s.ListPosts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	public, err := s.ListPosts(ctx, true)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "hello", public[0].Slug)
	assert.Equal(t, models.StringList{"go", "web"}, public[0].Tags)
	assert.Equal(t, models.ContentFormatHTML, public[0].ContentFormat)
	assert.Equal(t, 3, public[0].ReadTime)

	_, err = s.GetPostBySlug(ctx, "draft", true)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := s.GetPostBySlug(ctx, "draft", false)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
	assert.Equal(t, models.StringList{}, got.Tags)

	dup := &models.BlogPost{Title: "Again", Slug: "hello", Content: "x", ContentFormat: models.ContentFormatMarkdown}
	assert.ErrorIs(t, s.CreatePost(ctx, dup), ErrConflict)

	got.Published = true
	got.Title = "Draft, published"
	require.NoError(t, s.UpdatePost(ctx, got))
	assert.Equal(t, "Draft, published", got.Title)

	missing := &models.BlogPost{ID: "nope", Slug: "nope", ContentFormat: models.ContentFormatMarkdown}
	assert.ErrorIs(t, s.UpdatePost(ctx, missing), ErrNotFound)

	require.NoError(t, s.DeletePost(ctx, got.ID))
	assert.ErrorIs(t, s.DeletePost(ctx, got.ID), ErrNotFound)
}

func TestContentStore_ImagesOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewContentStore(newTestDB(t).DB)

	post := &models.BlogPost{Title: "Gallery", Slug: "gallery", Content: "x", ContentFormat: models.ContentFormatMarkdown}
	require.NoError(t, s.CreatePost(ctx, post))

	for _, url := range []string{"https://cdn/1.png", "https://cdn/2.png", "https://cdn/3.png"} {
		require.NoError(t, s.AddImage(ctx, &models.BlogImage{PostID: post.ID, ImageURL: url, AltText: "alt"}))
	}

	images, err := s.ListImages(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, images, 3)
	for i, img := range images {
		assert.Equal(t, i, img.OrderIndex)
	}
	assert.Equal(t, "https://cdn/1.png", images[0].ImageURL)

	none, err := s.ListImages(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)

	require.NoError(t, s.DeletePost(ctx, post.ID))
	images, err = s.ListImages(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestContentStore_ProjectsAndContacts(t *testing.T) {
	ctx := context.Background()
	s := NewContentStore(newTestDB(t).DB)

	p := &models.Project{
		Title:       "Portfolio",
		Description: "This site",
		TechStack:   models.StringList{"Go", "Gin"},
		GithubLink:  "https://github.com/example/portfolio",
	}
	require.NoError(t, s.CreateProject(ctx, p))

	p.LiveLink = "https://example.com"
	require.NoError(t, s.UpdateProject(ctx, p))

	projects, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "https://example.com", projects[0].LiveLink)
	assert.Equal(t, models.StringList{"Go", "Gin"}, projects[0].TechStack)
	assert.Equal(t, models.StringList{}, projects[0].Tags)

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	assert.ErrorIs(t, s.DeleteProject(ctx, p.ID), ErrNotFound)

	c := &models.Contact{Name: "Ada", Email: "ada@example.com", Message: "Hi"}
	require.NoError(t, s.CreateContact(ctx, c))
	contacts, err := s.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Ada", contacts[0].Name)

	require.NoError(t, s.DeleteContact(ctx, c.ID))
	assert.ErrorIs(t, s.DeleteContact(ctx, c.ID), ErrNotFound)
}
