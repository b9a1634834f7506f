package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/taskscope/internal/logger"
	postgresstore "github.com/wolfeidau/taskscope/internal/store/postgres"
)

type MigrateCmd struct {
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx = log.WithContext(ctx)

	if err := c.PostgresStore.Validate(); err != nil {
		return fmt.Errorf("failed to validate postgres flags: %w", err)
	}

	cfg := c.PostgresStore.config()
	pool, err := postgresstore.NewPool(ctx, &cfg.Pool)
	if err != nil {
		return err
	}
	defer pool.Close()

	return postgresstore.RunMigrations(ctx, pool)
}
