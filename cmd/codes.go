package cmd

import (
	"github.com/spf13/cobra"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

// codesCmd represents the codes command.
var codesCmd = newCodesCmd()

func newCodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List the known difference codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ui.DisplayCodes(cmd.Context(), m.KnownCodes())
		},
	}
}

func init() {
	rootCmd.AddCommand(codesCmd)
}
