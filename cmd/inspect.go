package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"apicheck.dev/pkg/apicheck/internal/domain"
	m "apicheck.dev/pkg/apicheck/internal/model"
)

var inspectMethodFlag string
var inspectFieldFlag string

// inspectCmd represents the inspect command.
var inspectCmd = newInspectCmd()

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <snapshot> <class>",
		Short: "Resolve a class, method or field in a snapshot",
		Long: `Resolve a declaration the way the filters do and print what was found.

Nested classes use binary names (com.acme.Outer$Inner). Methods take a
signature such as "public java.lang.String name(int, long[])".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Inspect(cmd.Context(), domain.InspectArgs{
				Snapshot:  m.Path(args[0]),
				Classpath: parsePaths(viper.GetStringSlice(classpathConfigKey)),
				Class:     args[1],
				Method:    inspectMethodFlag,
				Field:     inspectFieldFlag,
			})
		},
	}

	cmd.Flags().StringVar(&inspectMethodFlag, "method", "", "method signature to resolve")
	cmd.Flags().StringVar(&inspectFieldFlag, "field", "", "field name to resolve")
	cmd.MarkFlagsMutuallyExclusive("method", "field")

	return cmd
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
