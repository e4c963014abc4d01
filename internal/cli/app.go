package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harun/gearproc/internal/config"
	"github.com/harun/gearproc/internal/logger"
	"github.com/harun/gearproc/internal/metrics"
	"github.com/harun/gearproc/pkg/gear"
	"github.com/harun/gearproc/pkg/procedural"
	"github.com/harun/gearproc/pkg/scene"
)

// app holds the modules shared by every command
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	store   *scene.Store
	runtime *procedural.Runtime
}

// newApp loads the configuration and brings up the procedural runtime.
// Scene diagnostics raised by the host are passed to onError.
func newApp(cmd *cobra.Command, onError scene.ErrorHandler) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flag := cmd.Flags().Lookup("log-level"); flag != nil && flag.Changed {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		Console:    cfg.Logging.Console,
		Pretty:     cfg.Logging.Pretty,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
		Output:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	zl := log.GetZerolog()

	m := metrics.NewMetrics()
	store := scene.NewStore(zl, onError)

	runtime := procedural.NewRuntime(zl, store, procedural.RuntimeConfig{
		BuiltinDir:   cfg.Procedurals.BuiltinDir,
		WorkspaceDir: cfg.Procedurals.WorkspaceDir,
		ExtraDirs:    cfg.Procedurals.ExtraDirs,
	})
	runtime.SetObserver(m)

	if err := runtime.RegisterBuiltin(gear.Manifest, gear.Load); err != nil {
		_ = log.Close()
		return nil, fmt.Errorf("failed to register gear procedural: %w", err)
	}

	result, err := runtime.Initialize(cmd.Context())
	if err != nil {
		_ = log.Close()
		return nil, fmt.Errorf("failed to initialize procedurals: %w", err)
	}
	for _, id := range result.Failed {
		log.Warn().Err(result.Errors[id]).Str("procedural", id).Msg("Procedural not available")
	}

	return &app{
		cfg:     cfg,
		log:     log,
		metrics: m,
		store:   store,
		runtime: runtime,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.runtime.Shutdown(ctx); err != nil {
		a.log.Error().Err(err).Msg("Failed to shut down procedural runtime")
	}
	_ = a.log.Close()
}
