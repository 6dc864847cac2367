package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/middleware"
)

// Pinger reports whether a backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Router bundles everything the HTTP surface is built from.
type Router struct {
	Analytics *AnalyticsHandlers
	Blog      *BlogHandlers
	Projects  *ProjectHandlers
	Contacts  *ContactHandlers
	Uploads   *UploadHandlers
	GitHub    *GitHubHandlers

	DB                Pinger
	Logger            *slog.Logger
	FrontendOrigin    string
	AdminPasswordHash string
}

func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Engine builds the gin engine with every route registered.
func (rt *Router) Engine() *gin.Engine {
	logger := rt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(rt.FrontendOrigin))

	r.GET("/healthz", Health(rt.DB))
	r.GET("/metrics", middleware.MetricsHandler())

	api := r.Group("/api")
	{
		api.POST("/analytics/page-view", rt.Analytics.TrackPageView)
		api.POST("/analytics/blog-view", rt.Analytics.TrackBlogView)

		api.GET("/blog/posts", rt.Blog.ListPublished)
		api.GET("/blog/posts/:slug", rt.Blog.GetBySlug)
		api.GET("/blog/posts/:slug/images", rt.Blog.ListImages)
		api.GET("/blog/search", rt.Blog.Search)

		api.GET("/projects", rt.Projects.List)
		api.POST("/contact", rt.Contacts.Submit)

		api.GET("/github/stats", rt.GitHub.Stats)
		api.GET("/github/contributions", rt.GitHub.Contributions)

		// Admin routes (require the shared admin key)
		admin := api.Group("/")
		admin.Use(middleware.AdminRequired(rt.AdminPasswordHash))
		{
			admin.GET("/analytics/stats", rt.Analytics.GetStats)
			admin.POST("/upload/image", rt.Uploads.UploadImage)

			admin.GET("/admin/posts", rt.Blog.ListAll)
			admin.POST("/admin/posts", rt.Blog.Create)
			admin.PUT("/admin/posts/:id", rt.Blog.Update)
			admin.DELETE("/admin/posts/:id", rt.Blog.Delete)

			admin.POST("/admin/projects", rt.Projects.Create)
			admin.PUT("/admin/projects/:id", rt.Projects.Update)
			admin.DELETE("/admin/projects/:id", rt.Projects.Delete)

			admin.GET("/admin/contacts", rt.Contacts.List)
			admin.DELETE("/admin/contacts/:id", rt.Contacts.Delete)
		}
	}

	return r
}
