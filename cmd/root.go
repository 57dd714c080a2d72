// Package cmd provides the root command and CLI setup for apicheck.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"apicheck.dev/pkg/apicheck/internal/adapter"
	"apicheck.dev/pkg/apicheck/internal/controller"
	"apicheck.dev/pkg/apicheck/internal/domain"
	m "apicheck.dev/pkg/apicheck/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var snapshotStore adapter.SnapshotStore
var differenceSource adapter.DifferenceSource
var reportStore adapter.ReportStore
var javaAdapter adapter.JavaSourceAdapter
var workflow domain.Workflow
var ui controller.UI

// excludePatterns is a root-level flag that filters source files for snapshot.
var excludePatterns []string

// classpathSnapshots lists additional snapshots consulted after the primary one.
var classpathSnapshots []string

var logFileFlag string
var verboseFlag bool

func init() {
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	snapshotStore = adapter.NewSnapshotStore(fsAdapter)
	differenceSource = adapter.NewDifferenceSource(fsAdapter)
	reportStore = adapter.NewReportStore(fsAdapter)
	javaAdapter = adapter.NewTreeSitterJavaAdapter()
	workflow = domain.NewWorkflow(
		fsAdapter,
		snapshotStore,
		differenceSource,
		reportStore,
		javaAdapter,
		ui,
	)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...              recursively scan current directory
  - ./src/main/...     recursively scan a source root
  - ./api ./spi        scan multiple directories`

const rootLongDescription = `Apicheck filters the API differences reported by a binary compatibility
checker. Each difference is kept or dropped by a chain of filters that look
up the affected declaration in a snapshot of the previous release: deprecated
members, adapter types and externally invoked types can be excused from the
report.`

const snapshotLongDescription = `Extract a snapshot of the declared Java API from source files.

` + pathPatternsHelp

const checkLongDescription = `Filter a comparator report against the snapshot of the previous release.

The report may be YAML, JSON, JSON lines or the comparator's XML format.
Records below --min-severity are dropped before filtering; the command fails
when errors (or warnings, with --fail-on-warning) remain.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "apicheck",
		Short:         "Java API difference filter",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("verbose"), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, "log-file", viper.GetString(logFilenameKey), "path of the rotated log file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("log-file"), logFilenameKey)

	cmd.PersistentFlags().StringArrayVar(&classpathSnapshots, classpathFlagName, viper.GetStringSlice(classpathConfigKey), "additional snapshot consulted during lookups (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(classpathFlagName), classpathConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
