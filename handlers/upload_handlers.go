package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/models"
	"portfolio/api/objectstore"
	"portfolio/api/store"
)

// ImageStore records uploaded images against their post.
type ImageStore interface {
	GetPostBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.BlogPost, error)
	AddImage(ctx context.Context, img *models.BlogImage) error
}

type UploadHandlers struct {
	Objects objectstore.Store
	Images  ImageStore
	now     func() time.Time
}

func NewUploadHandlers(objects objectstore.Store, images ImageStore) *UploadHandlers {
	return &UploadHandlers{Objects: objects, Images: images, now: time.Now}
}

func (h *UploadHandlers) UploadImage(c *gin.Context) {
	if h.Objects == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if header.Size > objectstore.MaxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large. Maximum size is 5MB."})
		return
	}
	altText := c.PostForm("altText")
	caption := c.PostForm("caption")
	postSlug := strings.TrimSpace(c.PostForm("postSlug"))

	file, err := header.Open()
	if err != nil {
		slog.Error("failed to open uploaded file", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer file.Close()

	img, err := objectstore.DetectImage(file)
	if err != nil {
		switch {
		case errors.Is(err, objectstore.ErrTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "File too large. Maximum size is 5MB."})
		case errors.Is(err, objectstore.ErrUnsupportedType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only JPG, PNG, GIF, and WebP are allowed."})
		default:
			slog.Error("failed to read uploaded file", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	var post *models.BlogPost
	if postSlug != "" {
		post, err = h.Images.GetPostBySlug(ctx, postSlug, false)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Blog post not found"})
				return
			}
			slog.Error("error fetching blog post for upload", "slug", postSlug, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	url, key, err := objectstore.UploadImage(ctx, h.Objects, img, h.now())
	if err != nil {
		slog.Error("storage upload error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}

	resp := gin.H{
		"success":  true,
		"url":      url,
		"fileName": key,
		"altText":  altText,
		"caption":  caption,
	}
	if post != nil {
		image := &models.BlogImage{
			PostID:   post.ID,
			ImageURL: url,
			AltText:  altText,
			Caption:  caption,
		}
		if err := h.Images.AddImage(ctx, image); err != nil {
			slog.Error("error recording blog image", "post_id", post.ID, "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record image"})
			return
		}
		resp["image"] = image
	}
	c.JSON(http.StatusOK, resp)
}
