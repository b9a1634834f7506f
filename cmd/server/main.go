package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/taskscope/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode." env:"TASKSCOPE_DEBUG"`
		Version kong.VersionFlag

		Serve   commands.ServeCmd   `cmd:"" help:"Start the task API server"`
		Migrate commands.MigrateCmd `cmd:"" help:"Run PostgreSQL migrations"`
		Seed    commands.SeedCmd    `cmd:"" help:"Load organizations and users from a seed file"`
		Token   commands.TokenCmd   `cmd:"" help:"Issue a caller token"`
		Keygen  commands.KeygenCmd  `cmd:"" help:"Generate an ES256 key pair for caller tokens"`
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("taskscope-server"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
