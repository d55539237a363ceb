package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shiftstack-labs/sqlshift/internal/cli/config"
	"github.com/shiftstack-labs/sqlshift/internal/translate"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var (
		endpoint      string
		sourceDialect string
		targetDialect string
		dryRun        bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Translate a batch of SQL files end to end",
		Long: `Run the full pipeline for every file in the input directory:
expand macros, submit the file to the translation service, and restore the
macro tokens in the translated result.

With --dry-run the translation step is skipped and files make the round trip
through the substitution engine unchanged, which is useful for validating a
macro mapping.`,
		Example: `  # Translate input/ against a translation service
  sqlshift run -m macros.yaml -i input -o output \
    --endpoint https://translator.example.com/v1 \
    --source-dialect teradata --target-dialect bigquery

  # Validate the mapping round trip without a service
  sqlshift run -m macros.yaml -i input -o output --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			cfg := cmdCtx.Cfg

			// Local flags override the translation config.
			if cfg.Translation == nil {
				cfg.Translation = &config.TranslationConfig{}
			}
			if endpoint != "" {
				cfg.Translation.Endpoint = endpoint
			}
			if sourceDialect != "" {
				cfg.Translation.SourceDialect = sourceDialect
			}
			if targetDialect != "" {
				cfg.Translation.TargetDialect = targetDialect
			}

			var translator translate.Translator
			if dryRun {
				translator = translate.Passthrough{}
			} else {
				if err := cfg.ValidateTranslation(); err != nil {
					return err
				}
				translator, err = translate.NewHTTP(translate.Options{
					Endpoint:      cfg.Translation.Endpoint,
					SourceDialect: cfg.Translation.SourceDialect,
					TargetDialect: cfg.Translation.TargetDialect,
					Token:         cfg.Translation.Token,
					Timeout:       time.Duration(cfg.Translation.TimeoutSeconds) * time.Second,
					Logger:        cmdCtx.Logger,
				})
				if err != nil {
					return err
				}
			}

			report, err := cmdCtx.Pipeline.Run(cmd.Context(), translator, cfg.InputDir, cfg.OutputDir)
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}
			return cmdCtx.renderReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Translation service URL")
	cmd.Flags().StringVar(&sourceDialect, "source-dialect", "", "Dialect of the input SQL")
	cmd.Flags().StringVar(&targetDialect, "target-dialect", "", "Dialect to translate to")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Skip the translation step")

	return cmd
}
