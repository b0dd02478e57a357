// Command bankbridge serves the static and remote bank views over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"github.com/Sternrassler/bankbridge/internal/config"
	"github.com/Sternrassler/bankbridge/internal/dataset"
	"github.com/Sternrassler/bankbridge/pkg/api"
	"github.com/Sternrassler/bankbridge/pkg/catalog"
	"github.com/Sternrassler/bankbridge/pkg/client"
	"github.com/Sternrassler/bankbridge/pkg/fetcher"
	"github.com/Sternrassler/bankbridge/pkg/logging"
	"github.com/Sternrassler/bankbridge/pkg/metrics"
	"github.com/Sternrassler/bankbridge/pkg/pipeline"
	"github.com/Sternrassler/bankbridge/pkg/snapshot"
	"github.com/Sternrassler/bankbridge/pkg/tracing"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func run(ctx context.Context, args []string) error {
	cfg := config.FromEnv()
	if err := applyArgs(&cfg, args); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logging.Setup(logging.Config{Level: level, Pretty: cfg.LogPretty, Output: os.Stderr})
	logger := logging.NewLogger("server")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	shutdownTracing, err := tracing.Setup(tracing.Config{Exporter: cfg.TracingExporter, ServiceName: logging.ServiceName})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("Tracer shutdown failed")
		}
	}()

	metrics.SetBuildInfo(version)

	handler, cleanup, err := buildHandler(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Str("user_agent", cfg.UserAgent).
			Msg("Starting bankbridge server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// applyArgs lets -port or a bare first argument override PORT.
func applyArgs(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("bankbridge", flag.ContinueOnError)
	port := fs.String("port", "", "listen port (overrides PORT)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *port != "":
		cfg.Port = *port
	case fs.NArg() > 0:
		cfg.Port = fs.Arg(0)
	}
	return nil
}

// buildHandler wires catalog, snapshot, client, fetcher and pipeline into the
// HTTP router. cleanup releases the Redis connection when one was opened.
func buildHandler(ctx context.Context, cfg config.Config) (http.Handler, func(), error) {
	cleanup := func() {}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	var (
		rdb   *redis.Client
		ready api.ReadyCheck
	)
	if cfg.RedisURL != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		cleanup = func() { _ = rdb.Close() }
		ready = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}

	store, err := snapshot.LoadFrom(ctx, snapshotSource(cfg, rdb))
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	httpClient, err := client.New(client.Config{UserAgent: cfg.UserAgent, Timeout: cfg.RemoteTimeout})
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	f := fetcher.New(httpClient, fetcher.Config{
		MaxConcurrency: cfg.RemoteMaxConcurrency,
		Timeout:        cfg.RemoteTimeout,
	})

	svc := pipeline.New(cat, store, f)
	return api.NewRouter(svc, ready), cleanup, nil
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.RemoteCatalogPath != "" {
		return catalog.LoadFile(cfg.RemoteCatalogPath)
	}
	return catalog.Load(dataset.RemoteCatalog())
}

// snapshotSource picks Redis, then file, then the embedded dataset.
func snapshotSource(cfg config.Config, rdb *redis.Client) snapshot.Source {
	switch {
	case rdb != nil && cfg.SnapshotRedisKey != "":
		return snapshot.NewRedisSource(rdb, cfg.SnapshotRedisKey)
	case cfg.StaticBanksPath != "":
		return snapshot.FileSource{Path: cfg.StaticBanksPath}
	default:
		return snapshot.EmbeddedSource{}
	}
}
