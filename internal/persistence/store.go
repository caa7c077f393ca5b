package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/docstore"
)

// Backends bundles what the document store was opened on.
type Backends struct {
	Store    docstore.Store
	Postgres *Postgres
}

// Close releases the database pool, if any.
func (b *Backends) Close() {
	if b != nil {
		b.Postgres.Close()
	}
}

// OpenStore picks the document store named by cfg.Store.Driver and, for
// Postgres, connects and applies migrations first.
func OpenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backends, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory document store; data is lost on exit")
		return &Backends{Store: docstore.NewMemoryStore()}, nil
	case config.StoreDriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if pg.PoolHandle() == nil {
			return nil, fmt.Errorf("postgres store requires POSTGRES_DSN")
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &Backends{Store: docstore.NewPostgresStore(pg.PoolHandle()), Postgres: pg}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
