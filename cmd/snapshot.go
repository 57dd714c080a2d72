package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"apicheck.dev/pkg/apicheck/internal/domain"
	m "apicheck.dev/pkg/apicheck/internal/model"
)

var snapshotOutputFlag string
var snapshotNameFlag string
var snapshotIncludeFlag []string
var snapshotExcludeFlag []string
var snapshotParallelFlag int

// snapshotCmd represents the snapshot command.
var snapshotCmd = newSnapshotCmd()

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot [paths...]",
		Short: "Extract an API snapshot from Java sources",
		Long:  snapshotLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Snapshot(cmd.Context(), domain.SnapshotArgs{
				Paths:          parsePaths(args),
				Exclude:        viper.GetStringSlice(excludeConfigKey),
				IncludeClasses: viper.GetStringSlice(snapshotIncludeKey),
				ExcludeClasses: viper.GetStringSlice(snapshotExcludeKey),
				Name:           snapshotNameFlag,
				Output:         m.Path(viper.GetString(snapshotOutputKey)),
				Threads:        viper.GetInt(snapshotParallelKey),
			})
		},
	}

	configureSnapshotFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func configureSnapshotFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&snapshotOutputFlag, "out", "O", viper.GetString(snapshotOutputKey), "snapshot file to write")
	bindFlagToConfig(cmd.Flags().Lookup("out"), snapshotOutputKey)

	cmd.Flags().StringVar(&snapshotNameFlag, "name", "", "release name recorded in the snapshot")

	cmd.Flags().StringArrayVar(&snapshotIncludeFlag, "include-class", viper.GetStringSlice(snapshotIncludeKey), "keep only classes matching the glob, e.g. com/acme/** (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup("include-class"), snapshotIncludeKey)

	cmd.Flags().StringArrayVar(&snapshotExcludeFlag, "exclude-class", viper.GetStringSlice(snapshotExcludeKey), "drop classes matching the glob (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup("exclude-class"), snapshotExcludeKey)

	cmd.Flags().IntVarP(&snapshotParallelFlag, parallelFlagName, "p", viper.GetInt(snapshotParallelKey), "number of parallel source parsers")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), snapshotParallelKey)
}
