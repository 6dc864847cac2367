package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/content"
	"portfolio/api/models"
	"portfolio/api/search"
	"portfolio/api/store"
)

type PostStore interface {
	ListPosts(ctx context.Context, publishedOnly bool) ([]models.BlogPost, error)
	GetPostBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.BlogPost, error)
	CreatePost(ctx context.Context, post *models.BlogPost) error
	UpdatePost(ctx context.Context, post *models.BlogPost) error
	DeletePost(ctx context.Context, id string) error
	ListImages(ctx context.Context, postID string) ([]models.BlogImage, error)
}

// PostIndex keeps the search index in step with admin edits.
type PostIndex interface {
	IndexPost(post *models.BlogPost) error
	DeletePost(id string) error
	Search(query string, limit int) ([]search.Result, error)
}

type BlogHandlers struct {
	Posts     PostStore
	Index     PostIndex
	Formatter content.Formatter
}

func NewBlogHandlers(posts PostStore, index PostIndex, formatter content.Formatter) *BlogHandlers {
	return &BlogHandlers{Posts: posts, Index: index, Formatter: formatter}
}

func (h *BlogHandlers) ListPublished(c *gin.Context) {
	h.list(c, true)
}

func (h *BlogHandlers) ListAll(c *gin.Context) {
	h.list(c, false)
}

func (h *BlogHandlers) list(c *gin.Context, publishedOnly bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	posts, err := h.Posts.ListPosts(ctx, publishedOnly)
	if err != nil {
		slog.Error("error fetching blog posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch blog posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetBySlug returns a published post with its body rendered to HTML.
func (h *BlogHandlers) GetBySlug(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	post, err := h.Posts.GetPostBySlug(ctx, c.Param("slug"), true)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Blog post not found"})
			return
		}
		slog.Error("error fetching blog post", "slug", c.Param("slug"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch blog post"})
		return
	}

	h.Formatter.RenderPost(post)
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandlers) ListImages(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	post, err := h.Posts.GetPostBySlug(ctx, c.Param("slug"), true)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Blog post not found"})
			return
		}
		slog.Error("error fetching blog post", "slug", c.Param("slug"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	images, err := h.Posts.ListImages(ctx, post.ID)
	if err != nil {
		slog.Error("error fetching images", "post_id", post.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch images"})
		return
	}
	c.JSON(http.StatusOK, images)
}

func (h *BlogHandlers) Search(c *gin.Context) {
	if h.Index == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not available"})
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})
		return
	}
	limit := search.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	results, err := h.Index.Search(query, limit)
	if err != nil {
		if errors.Is(err, search.ErrBadQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search query"})
			return
		}
		slog.Error("search failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func postFromInput(in *models.BlogPostInput) (*models.BlogPost, bool) {
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = content.Slugify(in.Title)
	}
	if slug == "" {
		return nil, false
	}
	return &models.BlogPost{
		Title:         in.Title,
		Slug:          slug,
		Excerpt:       in.Excerpt,
		Content:       in.Content,
		ContentFormat: content.NormalizeFormat(in.ContentFormat),
		Tags:          models.StringList(in.Tags),
		Featured:      in.Featured,
		Published:     in.Published,
		ReadTime:      in.ReadTime,
	}, true
}

func (h *BlogHandlers) reindex(post *models.BlogPost) {
	if h.Index == nil {
		return
	}
	if err := h.Index.IndexPost(post); err != nil {
		slog.Warn("failed to update search index", "post_id", post.ID, "error", err)
	}
}

func (h *BlogHandlers) Create(c *gin.Context) {
	var in models.BlogPostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	post, ok := postFromInput(&in)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A slug could not be derived from the title"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Posts.CreatePost(ctx, post); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "A post with this slug already exists"})
			return
		}
		slog.Error("error creating blog post", "slug", post.Slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create blog post"})
		return
	}

	h.reindex(post)
	c.JSON(http.StatusCreated, post)
}

func (h *BlogHandlers) Update(c *gin.Context) {
	var in models.BlogPostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	post, ok := postFromInput(&in)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A slug could not be derived from the title"})
		return
	}
	post.ID = c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Posts.UpdatePost(ctx, post); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Blog post not found"})
		case errors.Is(err, store.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "A post with this slug already exists"})
		default:
			slog.Error("error updating blog post", "id", post.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update blog post"})
		}
		return
	}

	h.reindex(post)
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandlers) Delete(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Posts.DeletePost(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Blog post not found"})
			return
		}
		slog.Error("error deleting blog post", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete blog post"})
		return
	}

	if h.Index != nil {
		if err := h.Index.DeletePost(id); err != nil {
			slog.Warn("failed to remove post from search index", "post_id", id, "error", err)
		}
	}
	c.Status(http.StatusNoContent)
}
