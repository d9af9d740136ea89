package main

import (
	"context"
	"fmt"
	"log"

	"github.com/parisxmas/OxiDB/OxiStory/internal/config"
	"github.com/parisxmas/OxiDB/OxiStory/internal/db"
	"github.com/parisxmas/OxiDB/OxiStory/internal/notify"
	"github.com/parisxmas/OxiDB/OxiStory/internal/pipeline"
	"github.com/parisxmas/OxiDB/OxiStory/internal/repository"
	"github.com/parisxmas/OxiDB/OxiStory/internal/repository/sqlite"
)

// backend is an opened storage backend.
type backend struct {
	stores *repository.Stores
	pool   *db.Pool
	close  func()
}

// openBackend connects to the configured storage. With prepare set the
// OxiDB indexes and bucket are created before returning.
func openBackend(ctx context.Context, cfg *config.Config, prepare bool) (*backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		sdb, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		log.Printf("Opened SQLite store at %s", cfg.SQLitePath)
		return &backend{stores: sdb.Stores(), close: func() { sdb.Close() }}, nil
	default:
		pool, err := db.NewPool(cfg.OxiDBHost, cfg.OxiDBPort, cfg.PoolSize)
		if err != nil {
			return nil, fmt.Errorf("connect to OxiDB: %w", err)
		}
		log.Printf("Connected to OxiDB at %s:%d (pool size: %d)", cfg.OxiDBHost, cfg.OxiDBPort, cfg.PoolSize)
		if prepare {
			if err := repository.PrepareOxiDB(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("prepare OxiDB: %w", err)
			}
		}
		return &backend{stores: repository.NewOxiDBStores(pool), pool: pool, close: pool.Close}, nil
	}
}

func newPipeline(cfg *config.Config, stores *repository.Stores) *pipeline.Pipeline {
	var opts []pipeline.Option
	if cfg.NotifyURL != "" {
		opts = append(opts, pipeline.WithNotifier(notify.NewWebhook(cfg.NotifyURL, cfg.HTTPTimeout)))
	} else {
		log.Printf("Warning: notify_url not set, submissions will not be announced")
	}
	if cfg.Compensate {
		opts = append(opts, pipeline.WithCompensation())
	}
	return pipeline.New(stores.Submissions, stores.Blobs, stores.Photos, opts...)
}
