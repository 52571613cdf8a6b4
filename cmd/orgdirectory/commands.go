package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"orgdirectory/internal/adapters/httpapi"
	"orgdirectory/internal/blob"
	"orgdirectory/internal/config"
	"orgdirectory/internal/core"
	"orgdirectory/internal/seed"
	"orgdirectory/pkg/domain"
)

const (
	configKey = "config"
	loggerKey = "logger"
)

func setup(c *cli.Context) error {
	var files []string
	if f := c.String("env-file"); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if driver := c.String("storage"); driver != "" {
		cfg.StorageDriver = core.StorageDriver(driver)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := config.NewLogger(c.App.ErrWriter, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg
	c.App.Metadata[loggerKey] = logger
	return nil
}

func appConfig(c *cli.Context) *config.Config {
	return c.App.Metadata[configKey].(*config.Config)
}

func appLogger(c *cli.Context) *slog.Logger {
	return c.App.Metadata[loggerKey].(*slog.Logger)
}

// openStore opens the configured read store. The memory backend is filled
// with a generated demo dataset.
func openStore(ctx context.Context, cfg *config.Config, migrate bool) (domain.ReadStore, error) {
	sc := cfg.Storage()
	if migrate {
		sc.ApplySchema = true
	}
	if sc.Driver == core.StorageMemory {
		ds := seed.Generate(seed.DefaultOptions())
		sc.Dataset = &ds
	}
	return core.OpenReadStore(ctx, sc)
}

type metricsSetup struct {
	recorder core.MetricsRecorder
	path     string
	handler  http.Handler
	reg      prometheus.Registerer
}

func setupMetrics(kind string) (metricsSetup, error) {
	switch kind {
	case config.MetricsPrometheus:
		rec, err := core.NewPrometheusMetricsRecorder(prometheus.DefaultRegisterer)
		if err != nil {
			return metricsSetup{}, err
		}
		return metricsSetup{recorder: rec, path: "/metrics", handler: promhttp.Handler(), reg: prometheus.DefaultRegisterer}, nil
	case config.MetricsExpvar:
		rec := core.NewExpvarMetricsRecorder("")
		return metricsSetup{recorder: rec, path: "/debug/vars", handler: expvar.Handler()}, nil
	default:
		return metricsSetup{}, nil
	}
}

func serveCommand(c *cli.Context) error {
	cfg := appConfig(c)
	logger := appLogger(c)
	if addr := c.String("addr"); addr != "" {
		cfg.HTTPAddr = addr
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	metrics, err := setupMetrics(cfg.Metrics)
	if err != nil {
		return err
	}
	svc, err := core.NewService(store, core.WithLogger(logger), core.WithMetricsRecorder(metrics.recorder))
	if err != nil {
		return err
	}
	handler, err := httpapi.NewHandler(svc, httpapi.Options{
		APIVersion:     cfg.APIVersion,
		APIKey:         cfg.APIAuthKey,
		MaxInFlight:    cfg.MaxInFlight,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
		MetricsPath:    metrics.path,
		MetricsHandler: metrics.handler,
		Registerer:     metrics.reg,
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.RequestTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	logger.Info("serving", "addr", ln.Addr().String(), "storage", cfg.StorageDriver, "api_version", cfg.APIVersion)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func migrateCommand(c *cli.Context) error {
	cfg := appConfig(c)
	if cfg.StorageDriver == core.StorageMemory {
		return fmt.Errorf("migrate requires a SQL storage driver")
	}
	store, err := openStore(c.Context, cfg, true)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _ = store.Close() }()
	appLogger(c).Info("schema applied", "storage", cfg.StorageDriver)
	return nil
}

func seedGenerateCommand(c *cli.Context) error {
	cfg := appConfig(c)
	key := c.String("key")
	if key == "" {
		key = cfg.DatasetKey
	}
	store, err := blob.Open(c.Context, cfg.Blob())
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	opts := seed.DefaultOptions()
	opts.Seed = c.Uint64("seed")
	opts.Organisations = c.Int("organisations")
	ds := seed.Generate(opts)
	info, err := seed.Save(c.Context, store, key, ds, c.Bool("overwrite"))
	if err != nil {
		return err
	}
	appLogger(c).Info("dataset stored", "key", info.Key, "bytes", info.Size, "organisations", len(ds.Organisations))
	return nil
}

func seedLoadCommand(c *cli.Context) error {
	cfg := appConfig(c)
	key := c.String("key")
	if key == "" {
		key = cfg.DatasetKey
	}
	if cfg.StorageDriver == core.StorageMemory {
		return fmt.Errorf("seed load requires a SQL storage driver")
	}
	bs, err := blob.Open(c.Context, cfg.Blob())
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	store, err := openStore(c.Context, cfg, false)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = store.Close() }()
	importer, ok := store.(core.Importer)
	if !ok {
		return fmt.Errorf("storage driver %s cannot import datasets", cfg.StorageDriver)
	}
	ds, err := seed.LoadInto(c.Context, bs, key, importer)
	if err != nil {
		return err
	}
	appLogger(c).Info("dataset imported", "key", key, "organisations", len(ds.Organisations), "activities", len(ds.Activities))
	return nil
}
