package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contextrank/internal/config"
	"github.com/fyrsmithlabs/contextrank/internal/language"
	"github.com/fyrsmithlabs/contextrank/internal/logging"
	"github.com/fyrsmithlabs/contextrank/internal/rankservice"
	"github.com/fyrsmithlabs/contextrank/internal/telemetry"
)

// app holds the wired dependencies of one command invocation.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	tel     *telemetry.Telemetry
	service *rankservice.Service
}

// newApp loads configuration, applies flag overrides and wires logging,
// telemetry and the rank service. logWriter selects stdout or stderr for
// logs; commands that own stdout pass logging.WriterStderr.
func newApp(ctx context.Context, cmd *cobra.Command, opts *rootOptions, logWriter string) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, opts, cfg); err != nil {
		return nil, err
	}

	logCfg, err := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}
	logCfg.Output.Writer = logWriter
	logCfg.Output.OTEL = cfg.Telemetry.Enabled
	logger, err := logging.NewLogger(logCfg, global.GetLoggerProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	for _, problem := range tel.Problems() {
		logger.Warn(ctx, "telemetry degraded", zap.Error(problem))
	}
	if err := language.DefaultLoadError(); err != nil {
		logger.Warn(ctx, "some language tables failed to load", zap.Error(err))
	}

	svcCfg, err := rankservice.FromSettings(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid ranker config: %w", err)
	}
	svc, err := rankservice.New(svcCfg, language.Default(), logger, tel)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, tel: tel, service: svc}, nil
}

// applyFlags overrides config values with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("language") {
		cfg.Ranker.DefaultLanguage = opts.language
	}
	if flags.Changed("threshold") {
		cfg.LexRank.Threshold = opts.threshold
	}
	if flags.Changed("epsilon") {
		cfg.LexRank.Epsilon = opts.epsilon
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// close flushes telemetry and logs.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if err := a.tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
		errs = append(errs, err)
	}
	if err := a.logger.Sync(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
