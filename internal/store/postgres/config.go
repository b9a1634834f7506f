package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/taskscope/internal/store"
)

// Config holds configuration for the PostgreSQL-backed stores.
type Config struct {
	Pool PoolConfig

	// AutoMigrate runs pending migrations before the stores are returned.
	AutoMigrate bool
}

// Open connects to PostgreSQL and returns the stores sharing one pool.
// The caller owns the returned pool and must close it.
func Open(ctx context.Context, cfg *Config) (store.Stores, *pgxpool.Pool, error) {
	pool, err := NewPool(ctx, &cfg.Pool)
	if err != nil {
		return store.Stores{}, nil, err
	}

	if cfg.AutoMigrate {
		if err := RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return store.Stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return NewStores(pool), pool, nil
}

// NewStores creates all PostgreSQL stores on a shared pool.
func NewStores(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Organizations: NewOrganizationStore(pool),
		Users:         NewUserStore(pool),
		Tasks:         NewTaskStore(pool),
		Audit:         NewAuditStore(pool),
	}
}
