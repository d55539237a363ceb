// Package commands implements the sqlshift subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shiftstack-labs/sqlshift/internal/cli/config"
	"github.com/shiftstack-labs/sqlshift/internal/macro"
	"github.com/shiftstack-labs/sqlshift/internal/pipeline"
)

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the loaded config in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// getConfig returns the config stored by the root command, or an empty one.
func getConfig(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

// getLogger returns the logger stored by the root command.
func getLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CommandContext holds common dependencies for the processing commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Table    *macro.Table
	Pipeline *pipeline.Pipeline
}

// NewCommandContext validates config, loads the macro table, and builds the
// pipeline. Validation failures and mapping errors are fatal here, before
// any file is touched.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig(cmd.Context())
	logger := getLogger(cmd.Context())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	table, err := macro.LoadMapping(cfg.MacrosPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("macro mapping loaded", "path", cfg.MacrosPath, "patterns", table.Len())

	p := pipeline.New(pipeline.Config{
		Table:   table,
		Workers: cfg.Workers,
		Logger:  logger,
	})

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Table:    table,
		Pipeline: p,
	}, nil
}

// renderReport writes the substitution report in the configured format and
// logs warnings.
func (c *CommandContext) renderReport(w io.Writer, report *macro.Report) error {
	for _, warning := range report.Warnings() {
		c.Logger.Warn(warning)
	}
	if c.Cfg.OutputFormat == "json" {
		return report.RenderJSON(w)
	}
	report.RenderText(w)
	return nil
}
