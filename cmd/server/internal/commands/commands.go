package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/taskscope/internal/store"
	memorystore "github.com/wolfeidau/taskscope/internal/store/memory"
	postgresstore "github.com/wolfeidau/taskscope/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

// configureHTTPServer derives request contexts from ctx without its cancellation,
// so in-flight requests keep running while Shutdown drains them.
func configureHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	base := context.WithoutCancel(ctx)

	// Create HTTP server
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		BaseContext:       func(net.Listener) context.Context { return base },
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`
	StartupTimeout  int32 `help:"seconds to wait for the database to accept connections" default:"30"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"TASKSCOPE_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	if s.MinConns > s.MaxConns {
		return fmt.Errorf("minimum connections (%d) exceeds maximum connections (%d)", s.MinConns, s.MaxConns)
	}
	return nil
}

func (s *PostgresStoreFlags) config() *postgresstore.Config {
	return &postgresstore.Config{
		Pool: postgresstore.PoolConfig{
			ConnString:      s.ConnString,
			MaxConns:        s.MaxConns,
			MinConns:        s.MinConns,
			MaxConnLifetime: s.MaxConnLifetime,
			MaxConnIdleTime: s.MaxConnIdleTime,
			StartupTimeout:  s.StartupTimeout,
		},
		AutoMigrate: s.AutoMigrate,
	}
}

// openStores creates the stores for storeType. The returned close function
// releases any database connections.
func openStores(ctx context.Context, storeType string, pg PostgresStoreFlags) (store.Stores, func(), error) {
	log := zerolog.Ctx(ctx)

	switch storeType {
	case "postgres":
		if err := pg.Validate(); err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to validate postgres flags: %w", err)
		}

		stores, pool, err := postgresstore.Open(ctx, pg.config())
		if err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to open postgres stores: %w", err)
		}

		log.Info().Bool("auto_migrate", pg.AutoMigrate).Msg("Using PostgreSQL stores")
		return stores, pool.Close, nil

	case "memory", "":
		log.Info().Msg("Using in-memory stores")
		return memorystore.NewStores(), func() {}, nil

	default:
		return store.Stores{}, nil, fmt.Errorf("unknown store type %q", storeType)
	}
}
