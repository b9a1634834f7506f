package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/taskscope/internal/logger"
	"github.com/wolfeidau/taskscope/internal/seed"
)

type SeedCmd struct {
	SeedFile      string             `help:"seed file to apply" required:"" env:"TASKSCOPE_SEED_FILE" type:"existingfile"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx = log.WithContext(ctx)

	file, err := seed.Load(c.SeedFile)
	if err != nil {
		return err
	}

	stores, closeStores, err := openStores(ctx, "postgres", c.PostgresStore)
	if err != nil {
		return err
	}
	defer closeStores()

	result, err := seed.Apply(ctx, stores, file)
	if err != nil {
		return fmt.Errorf("failed to apply seed file: %w", err)
	}

	log.Info().
		Int("organizations_created", result.OrganizationsCreated).
		Int("organizations_skipped", result.OrganizationsSkipped).
		Int("users_created", result.UsersCreated).
		Int("users_skipped", result.UsersSkipped).
		Msg("Seed complete")

	return nil
}
