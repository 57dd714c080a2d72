package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"apicheck.dev/pkg/apicheck/internal/domain"
	m "apicheck.dev/pkg/apicheck/internal/model"
)

var checkMinSeverityFlag string
var checkIncludeCodesFlag []int
var checkExcludeCodesFlag []int
var checkSkipDeprecatedFlag bool
var checkDeprecationAnnotationsFlag []string
var checkAdapterAnnotationsFlag []string
var checkExternalAnnotationsFlag []string
var checkParallelFlag int
var checkFailOnErrorFlag bool
var checkFailOnWarningFlag bool
var checkTextOutputFlag string
var checkXMLOutputFlag string

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <previous-snapshot> <differences>",
		Short: "Filter a comparator report",
		Long:  checkLongDescription,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			checkArgs, err := checkArgsFromConfig(args[0], args[1])
			if err != nil {
				return err
			}

			return workflow.Check(cmd.Context(), checkArgs)
		},
	}

	configureCheckFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func configureCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&checkMinSeverityFlag, "min-severity", viper.GetString(minSeverityKey), "drop differences below this severity (info, warning, error)")
	bindFlagToConfig(cmd.Flags().Lookup("min-severity"), minSeverityKey)

	cmd.Flags().IntSliceVar(&checkIncludeCodesFlag, "include-code", viper.GetIntSlice(includeCodesKey), "report only these difference codes (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup("include-code"), includeCodesKey)

	cmd.Flags().IntSliceVar(&checkExcludeCodesFlag, "exclude-code", viper.GetIntSlice(excludeCodesKey), "never report these difference codes (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup("exclude-code"), excludeCodesKey)

	cmd.Flags().BoolVar(&checkSkipDeprecatedFlag, "skip-deprecated", viper.GetBool(skipDeprecatedKey), "drop differences on deprecated declarations")
	bindFlagToConfig(cmd.Flags().Lookup("skip-deprecated"), skipDeprecatedKey)

	cmd.Flags().StringArrayVar(&checkDeprecationAnnotationsFlag, "deprecation-annotation", viper.GetStringSlice(deprecationAnnotationsKey), "annotation marking a declaration deprecated (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup("deprecation-annotation"), deprecationAnnotationsKey)

	cmd.Flags().StringArrayVar(&checkAdapterAnnotationsFlag, "adapter-annotation", viper.GetStringSlice(adapterAnnotationsKey), "annotation marking an adapter type (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup("adapter-annotation"), adapterAnnotationsKey)

	cmd.Flags().StringArrayVar(&checkExternalAnnotationsFlag, "external-annotation", viper.GetStringSlice(externalAnnotationsKey), "annotation marking a type invoked from outside the library (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup("external-annotation"), externalAnnotationsKey)

	cmd.Flags().IntVarP(&checkParallelFlag, parallelFlagName, "p", viper.GetInt(checkParallelKey), "number of parallel filter workers")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), checkParallelKey)

	cmd.Flags().BoolVar(&checkFailOnErrorFlag, "fail-on-error", viper.GetBool(failOnErrorKey), "exit non-zero when error differences remain")
	bindFlagToConfig(cmd.Flags().Lookup("fail-on-error"), failOnErrorKey)

	cmd.Flags().BoolVar(&checkFailOnWarningFlag, "fail-on-warning", viper.GetBool(failOnWarningKey), "exit non-zero when warning differences remain")
	bindFlagToConfig(cmd.Flags().Lookup("fail-on-warning"), failOnWarningKey)

	cmd.Flags().StringVar(&checkTextOutputFlag, "text-output", viper.GetString(textOutputKey), "write the kept differences as plain text")
	bindFlagToConfig(cmd.Flags().Lookup("text-output"), textOutputKey)

	cmd.Flags().StringVar(&checkXMLOutputFlag, "xml-output", viper.GetString(xmlOutputKey), "write the kept differences as comparator XML")
	bindFlagToConfig(cmd.Flags().Lookup("xml-output"), xmlOutputKey)
}

func checkArgsFromConfig(previous, differences string) (domain.CheckArgs, error) {
	severity, err := m.ParseSeverity(viper.GetString(minSeverityKey))
	if err != nil {
		return domain.CheckArgs{}, fmt.Errorf("min severity: %w", err)
	}

	return domain.CheckArgs{
		Previous:    m.Path(previous),
		Differences: m.Path(differences),
		Classpath:   parsePaths(viper.GetStringSlice(classpathConfigKey)),
		Policy: domain.Policy{
			IncludeCodes:                  parseCodes(viper.GetIntSlice(includeCodesKey)),
			ExcludeCodes:                  parseCodes(viper.GetIntSlice(excludeCodesKey)),
			SkipDeprecated:                viper.GetBool(skipDeprecatedKey),
			DeprecationAnnotations:        viper.GetStringSlice(deprecationAnnotationsKey),
			AdapterAnnotations:            viper.GetStringSlice(adapterAnnotationsKey),
			ExternalInvocationAnnotations: viper.GetStringSlice(externalAnnotationsKey),
		},
		MinSeverity:   severity,
		Threads:       viper.GetInt(checkParallelKey),
		FailOnError:   viper.GetBool(failOnErrorKey),
		FailOnWarning: viper.GetBool(failOnWarningKey),
		TextOutput:    m.Path(viper.GetString(textOutputKey)),
		XMLOutput:     m.Path(viper.GetString(xmlOutputKey)),
	}, nil
}

func parseCodes(values []int) []m.Code {
	codes := make([]m.Code, 0, len(values))
	for _, v := range values {
		codes = append(codes, m.Code(v))
	}

	return codes
}
