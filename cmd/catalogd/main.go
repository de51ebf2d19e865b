package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/catalog/internal/backend/app"
	"github.com/abgdnv/catalog/internal/backend/config"
	"github.com/abgdnv/catalog/internal/backend/migrations"
	"github.com/abgdnv/catalog/internal/backend/store"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	"github.com/abgdnv/catalog/pkg/messaging"
	natsclient "github.com/abgdnv/catalog/pkg/nats"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/abgdnv/catalog/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "catalogd"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, selects the store and the publisher, and serves HTTP (and pprof) until ctx is done.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(os.Stdout, cfg.Log.Level)
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("Failed to shut down tracer provider", "error", err)
		}
	}()

	catalogStore, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	deps := app.SetupDependencies(catalogStore, publisher, logger)
	httpServer := app.SetupHttpServer(deps, cfg)

	g, gCtx := errgroup.WithContext(ctx)
	server.Serve(gCtx, g, httpServer, "HTTP", cfg.Shutdown.Timeout, logger)
	if cfg.PProf.Enabled {
		// net/http/pprof registers its handlers on the default mux.
		server.Serve(gCtx, g, &http.Server{Addr: cfg.PProf.Addr}, "pprof", cfg.Shutdown.Timeout, logger)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// newStore returns the Postgres store when a database url is configured, the in-memory one otherwise.
func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.CatalogStore, func(), error) {
	if !cfg.Database.Enabled() {
		logger.Warn("No database configured, using the in-memory store")
		return store.NewInMemoryStore(), func() {}, nil
	}
	if cfg.Database.Migrate {
		if err := bootstrap.Migrate(migrations.FS, ".", cfg.Database.URL, logger); err != nil {
			return nil, nil, err
		}
	}
	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Successfully connected to the database!")
	return store.NewPgStore(dbPool), dbPool.Close, nil
}

// newPublisher connects to JetStream when NATS is configured. Without it events are dropped.
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Nats.Enabled() {
		logger.Info("No NATS configured, catalog events are not published")
		return messaging.NopPublisher{}, func() {}, nil
	}
	nc, err := natsclient.NewClient(cfg.Nats.Url, "catalogd", cfg.Nats.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.Nats.Timeout)
	defer cancel()
	if err := natsclient.EnsureStream(streamCtx, js, cfg.Nats.Stream, messaging.SubjectWildcard); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Publishing catalog events", "stream", cfg.Nats.Stream)
	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("Failed to drain NATS connection", "error", err)
		}
	}
	return natsclient.NewNatsPublisher(js), closeFn, nil
}
