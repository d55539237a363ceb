package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPreprocessCommand creates the preprocess command.
func NewPreprocessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preprocess",
		Short: "Expand macros in SQL files before translation",
		Long: `Apply forward macro substitution to every file in the input directory.

Each file's applicable macros are the union of all mapping patterns whose
glob matches the file name; later patterns win when keys overlap. Processed
files are written to the output directory with the same layout. Files with
.zip, .csv or .json extensions are copied through untouched.`,
		Example: `  # Expand macros from macros.yaml into the preprocessed directory
  sqlshift preprocess -m macros.yaml -i input -o preprocessed

  # Emit the substitution report as JSON
  sqlshift preprocess -m macros.yaml -i input -o preprocessed -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			report, err := cmdCtx.Pipeline.Preprocess(cmd.Context(), cmdCtx.Cfg.InputDir, cmdCtx.Cfg.OutputDir)
			if err != nil {
				return fmt.Errorf("preprocessing failed: %w", err)
			}
			return cmdCtx.renderReport(cmd.OutOrStdout(), report)
		},
	}
}
