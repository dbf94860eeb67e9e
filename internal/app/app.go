// Package app wires configuration, logging, the Messari client and the
// pipeline runner together for the collector commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/messari-data/internal/api"
	"github.com/rickgao/messari-data/internal/config"
	"github.com/rickgao/messari-data/internal/database"
	"github.com/rickgao/messari-data/internal/layout"
	"github.com/rickgao/messari-data/internal/logging"
	"github.com/rickgao/messari-data/internal/manifest"
	"github.com/rickgao/messari-data/internal/pipeline"
	"github.com/rickgao/messari-data/internal/state"
	"github.com/rickgao/messari-data/internal/version"
)

// Options selects the files a command starts from.
type Options struct {
	Name       string // Command name, used in log lines
	ConfigPath string // Empty runs on defaults
	EnvPath    string // Optional .env file

	// Override adjusts the loaded config, typically from command flags.
	// The result is validated again.
	Override func(*config.Config)
}

// App holds everything a command needs. Close releases it.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Client *api.Client
	Runner *pipeline.Runner

	closers []io.Closer
}

// New loads configuration, builds the logger and client, opens the
// manifest backend and returns a ready Runner.
func New(ctx context.Context, opts Options) (*App, error) {
	if err := config.LoadEnvFile(opts.EnvPath); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Override != nil {
		opts.Override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}
	if err := cfg.ResolveAPIKey(); err != nil {
		return nil, fmt.Errorf("resolve api key: %w", err)
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	a := &App{Config: cfg, Logger: logger, closers: []io.Closer{logCloser}}

	logger.Info("starting "+opts.Name,
		"version", version.String(),
		"config", opts.ConfigPath,
	)

	a.Client = api.NewClient(
		cfg.API.BaseURL,
		cfg.API.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, api.DefaultRetryBackoff),
	)
	if !a.Client.Authenticated() {
		logger.Warn("no api key configured, requests are unauthenticated",
			"secrets", cfg.Secrets.Path,
		)
	}

	store, err := openManifest(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, store)

	a.Runner = pipeline.New(
		PipelineConfig(cfg),
		a.Client,
		layout.New(cfg.Storage.Root),
		state.Store{TickerPath: cfg.Storage.TickerList, MetricPath: cfg.Storage.MetricList},
		store,
		logger,
	)

	return a, nil
}

// Run builds an App, runs fn under a context canceled on SIGINT or SIGTERM
// and returns the process exit code.
func Run(opts Options, fn func(ctx context.Context, a *App) error) int {
	a, err := New(context.Background(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", opts.Name, err)
		return 1
	}
	defer a.Close()

	ctx, cancel := SignalContext(a.Logger)
	defer cancel()

	if err := fn(ctx, a); err != nil {
		a.Logger.Error(opts.Name+" failed", "error", err)
		return 1
	}
	a.Logger.Info(opts.Name + " finished")
	return 0
}

// Close releases the manifest and log output, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// PipelineConfig maps the file configuration onto the pipeline's.
func PipelineConfig(cfg *config.Config) pipeline.Config {
	return pipeline.Config{
		Discovery: pipeline.DiscoveryConfig{
			Pages:    cfg.Discovery.Pages,
			PageSize: cfg.Discovery.PageSize,
			Fields:   cfg.Discovery.Fields,
			Exclude:  cfg.Discovery.Exclude,
		},
		Metrics: cfg.Metrics.IDs,
		Fetch: pipeline.FetchConfig{
			Start:           cfg.Fetch.Start,
			End:             cfg.Fetch.End,
			Interval:        cfg.Fetch.Interval,
			ContinueOnError: cfg.Fetch.ContinueOnError,
		},
	}
}

// SignalContext returns a context canceled on SIGINT or SIGTERM.
func SignalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
		return cfg, nil
	}
	return config.LoadAndValidate(path)
}

func openManifest(ctx context.Context, cfg *config.Config, logger *slog.Logger) (manifest.Store, error) {
	switch cfg.Manifest.Backend {
	case config.ManifestNone:
		return manifest.Nop{}, nil

	case config.ManifestPostgres:
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect manifest database: %w", err)
		}
		store, err := manifest.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database connected")
		return store, nil

	default:
		store, err := manifest.OpenFile(cfg.Manifest.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug("manifest opened", "path", cfg.Manifest.Path)
		return store, nil
	}
}
