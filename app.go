package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"portfolio/api/analytics"
	"portfolio/api/config"
	"portfolio/api/database"
	"portfolio/api/handlers"
	"portfolio/api/store"
)

// eventStore is what both analytics backends provide.
type eventStore interface {
	analytics.EventSource
	handlers.EventRecorder
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger

	sql *database.DBClient
	ch  *database.ClickHouseClient

	events  eventStore
	content *store.ContentStore
}

// setup loads configuration, installs the logger and opens the databases.
// With migrate set, missing tables are created before returning.
func setup(ctx context.Context, migrate bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}

	a.sql, err = database.NewSQLDB(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize relational database: %w", err)
	}
	if migrate {
		if err := database.Migrate(ctx, a.sql.DB, a.sql.Driver); err != nil {
			a.Close()
			return nil, err
		}
		slog.Info("relational schema up to date", "driver", a.sql.Driver)
	}
	a.content = store.NewContentStore(a.sql.DB)

	switch cfg.AnalyticsBackend {
	case "clickhouse":
		a.ch, err = database.NewClickHouseDB(ctx, cfg.ClickHouse)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize ClickHouse database: %w", err)
		}
		chStore := store.NewClickHouseStore(a.ch)
		if migrate {
			if err := chStore.Migrate(ctx); err != nil {
				a.Close()
				return nil, err
			}
			slog.Info("clickhouse schema up to date")
		}
		a.events = chStore
	default:
		a.events = store.NewAnalyticsStore(a.sql.DB)
	}

	return a, nil
}

func (a *app) aggregator() (*analytics.Aggregator, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	return analytics.NewAggregator(a.events, analytics.WithLocation(loc)), nil
}

func (a *app) Close() {
	if a.ch != nil {
		a.ch.Close()
	}
	if a.sql != nil {
		a.sql.Close()
	}
}
