package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"portfolio/api/content"
	"portfolio/api/github"
	"portfolio/api/handlers"
	"portfolio/api/objectstore"
	"portfolio/api/search"
	"portfolio/api/session"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	if cfg.AutoMigrate {
		if err := migrateAll(ctx, a); err != nil {
			return err
		}
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// --- Session identity ---
	var sessions session.Provider = session.ClientProvider{}
	if cfg.SessionMode == "token" {
		tp, err := session.NewTokenProvider([]byte(cfg.SessionSecret), cfg.SessionTTL, cfg.SecureCookies)
		if err != nil {
			return err
		}
		sessions = tp
	}

	aggregator, err := a.aggregator()
	if err != nil {
		return err
	}

	// --- Search index ---
	var index handlers.PostIndex
	idx, err := search.Open(cfg.SearchIndexPath)
	if err != nil {
		slog.Error("search disabled: failed to open index", "path", cfg.SearchIndexPath, "error", err)
	} else {
		defer idx.Close()
		posts, err := a.content.ListPosts(ctx, false)
		if err != nil {
			return err
		}
		if err := idx.Rebuild(posts); err != nil {
			return err
		}
		index = idx
	}

	// --- Object storage ---
	var objects objectstore.Store
	if cfg.GCS.Bucket != "" {
		gcs, err := objectstore.NewGCSStore(ctx, cfg.GCS)
		if err != nil {
			return err
		}
		defer gcs.Close()
		objects = gcs
	} else {
		slog.Warn("GCS_BUCKET not set, image uploads are disabled")
	}

	ghClient := github.NewClient(github.WithToken(cfg.GitHub.Token))

	router := &handlers.Router{
		Analytics:         handlers.NewAnalyticsHandlers(a.events, aggregator, sessions),
		Blog:              handlers.NewBlogHandlers(a.content, index, content.Formatter{EscapeHTML: cfg.ContentEscapeHTML}),
		Projects:          handlers.NewProjectHandlers(a.content),
		Contacts:          handlers.NewContactHandlers(a.content),
		Uploads:           handlers.NewUploadHandlers(objects, a.content),
		GitHub:            handlers.NewGitHubHandlers(ghClient, cfg.GitHub.Username),
		DB:                a.sql.DB,
		Logger:            a.logger,
		FrontendOrigin:    cfg.FrontendOrigin,
		AdminPasswordHash: cfg.AdminPasswordHash,
	}
	if cfg.AdminPasswordHash == "" {
		slog.Warn("ADMIN_PASSWORD_HASH not set, admin routes will refuse every request")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server exiting")
	return nil
}
