package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/guimove/trainfit/internal/cache"
	"github.com/guimove/trainfit/internal/events"
	"github.com/guimove/trainfit/internal/logging"
	"github.com/guimove/trainfit/internal/metrics"
	"github.com/guimove/trainfit/internal/optimizer"
	"github.com/guimove/trainfit/internal/orchestrator"
	"github.com/guimove/trainfit/internal/store"
)

// openStore opens the configured store, migrating SQL schemas when
// database.migrate is set.
func openStore(ctx context.Context) (store.Store, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn().Msg("using the in-memory store; nothing survives this process")
		return store.NewMemory(), nil
	}

	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	logger.Debug().Str("driver", cfg.Database.Driver).Msg("store opened")
	return db, nil
}

// openBroker connects to Redis when a URL is configured, otherwise events
// stay in this process.
func openBroker(ctx context.Context) (events.Broker, error) {
	if cfg.Redis.URL == "" {
		return events.NewMemory(), nil
	}
	rb, err := events.NewRedis(cfg.Redis.URL, cfg.Redis.Channel, logging.Component(logger, "events"))
	if err != nil {
		return nil, err
	}
	if err := rb.Ping(ctx); err != nil {
		_ = rb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rb, nil
}

func newOrchestrator(st store.Store, broker events.Broker, rec *metrics.Recorder) *orchestrator.Orchestrator {
	return orchestrator.New(
		st,
		broker,
		optimizer.New(cfg.Optimizer.Options()),
		cache.NewResultCache(cfg.Cache.Size),
		rec,
		logging.Component(logger, "orchestrator"),
	)
}

// cacheDir returns the file cache directory, defaulting to the user cache.
func cacheDir() string {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "trainfit")
	}
	return filepath.Join(os.TempDir(), "trainfit-cache")
}

// withService opens the store and broker, runs fn, and closes both.
func withService(ctx context.Context, fn func(orch *orchestrator.Orchestrator) error) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	broker, err := openBroker(ctx)
	if err != nil {
		return err
	}
	defer broker.Close()

	return fn(newOrchestrator(st, broker, nil))
}
