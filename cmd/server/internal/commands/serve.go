package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wolfeidau/taskscope/internal/auth"
	"github.com/wolfeidau/taskscope/internal/logger"
	"github.com/wolfeidau/taskscope/internal/seed"
	"github.com/wolfeidau/taskscope/internal/server"
	"github.com/wolfeidau/taskscope/internal/tasks"
	"github.com/wolfeidau/taskscope/internal/telemetry"
)

type ServeCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"TASKSCOPE_LISTEN"`
	Cert   string `help:"path to TLS cert file, serves plain HTTP when empty" default:"" env:"TASKSCOPE_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"TASKSCOPE_TLS_KEY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"https://localhost" env:"TASKSCOPE_CORS_ORIGINS"`

	// Authentication
	JWTPublicKey []byte `help:"path to the PEM-encoded ES256 public key used to verify caller tokens" type:"filecontent" required:"" env:"TASKSCOPE_JWT_PUBLIC_KEY"`

	// Telemetry
	Tracing     bool    `help:"enable tracing and OTLP metrics" default:"false" env:"TASKSCOPE_TRACING"`
	SampleRatio float64 `help:"fraction of root traces to sample" default:"1.0" env:"TASKSCOPE_TRACE_SAMPLE_RATIO"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"TASKSCOPE_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
	SeedFile      string             `help:"seed file applied at startup" default:"" env:"TASKSCOPE_SEED_FILE" type:"path"`

	ShutdownTimeout time.Duration `help:"time allowed for in-flight requests on shutdown" default:"10s"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx = log.WithContext(ctx)

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "taskscope-server", globals.Version, c.SampleRatio)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	stores, closeStores, err := openStores(ctx, c.StoreType, c.PostgresStore)
	if err != nil {
		return err
	}
	defer closeStores()

	if c.SeedFile != "" {
		file, err := seed.Load(c.SeedFile)
		if err != nil {
			return err
		}
		result, err := seed.Apply(ctx, stores, file)
		if err != nil {
			return fmt.Errorf("failed to apply seed file: %w", err)
		}
		log.Info().
			Int("organizations", result.OrganizationsCreated).
			Int("users", result.UsersCreated).
			Msg("Seed data applied")
	}

	verifier, err := auth.NewJWTVerifier(string(c.JWTPublicKey))
	if err != nil {
		return fmt.Errorf("failed to load JWT public key: %w", err)
	}

	access := auth.NewAccessController(auth.NewOrgScopeResolver(stores.Organizations))
	svc := tasks.NewService(stores, access)

	handler, err := server.NewServer(svc).Handler(server.HandlerConfig{
		Logger:      log,
		Verifier:    verifier,
		CORSOrigins: c.CORSOrigins,
		Tracing:     c.Tracing,
	})
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}

	srv := configureHTTPServer(ctx, c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		tls := c.Cert != "" && c.Key != ""
		log.Info().Str("addr", c.Listen).Bool("tls", tls).Str("store", c.StoreType).Msg("Starting HTTP server")
		if tls {
			errCh <- srv.ListenAndServeTLS(c.Cert, c.Key)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
