package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPostprocessCommand creates the postprocess command.
func NewPostprocessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "postprocess",
		Short: "Restore macro tokens in translated SQL files",
		Long: `Apply reverse macro substitution to translated output.

Each replacement value is substituted back to its original macro token.
Two macros sharing the same replacement value make reversal ambiguous; such
collisions are reported as warnings and resolved in favor of the
last-declared macro. Restoration is textual and best-effort: values the
translation service rewrote (for example case-folded identifiers) cannot be
recovered.`,
		Example: `  # Restore macros in translated files
  sqlshift postprocess -m macros.yaml -i translated -o postprocessed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			report, err := cmdCtx.Pipeline.Postprocess(cmd.Context(), cmdCtx.Cfg.InputDir, cmdCtx.Cfg.OutputDir)
			if err != nil {
				return fmt.Errorf("postprocessing failed: %w", err)
			}
			return cmdCtx.renderReport(cmd.OutOrStdout(), report)
		},
	}
}
