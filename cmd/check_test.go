package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"apicheck.dev/pkg/apicheck/internal/domain"
	domainmocks "apicheck.dev/pkg/apicheck/internal/domain/mocks"
	m "apicheck.dev/pkg/apicheck/internal/model"
)

func newTestCheckCmd(t *testing.T) (*domainmocks.MockWorkflow, func(args ...string) error) {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	originalWorkflow := workflow
	workflow = mockWorkflow
	t.Cleanup(func() { workflow = originalWorkflow })

	execute := func(args ...string) error {
		cmd := newRootCmd()
		cmd.AddCommand(newCheckCmd())
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"check"}, args...))

		return cmd.Execute()
	}

	return mockWorkflow, execute
}

func TestCheckCmd_Defaults(t *testing.T) {
	mockWorkflow, execute := newTestCheckCmd(t)

	mockWorkflow.On("Check", mock.Anything, mock.MatchedBy(func(args domain.CheckArgs) bool {
		return args.Previous == m.Path("previous.yaml") &&
			args.Differences == m.Path("differences.xml") &&
			args.MinSeverity == m.SeverityWarning &&
			args.Policy.SkipDeprecated &&
			len(args.Policy.IncludeCodes) == 0 &&
			len(args.Policy.ExcludeCodes) == 0 &&
			assert.ObjectsAreEqual([]string{domain.DefaultDeprecationAnnotation}, args.Policy.DeprecationAnnotations) &&
			len(args.Policy.AdapterAnnotations) == 0 &&
			args.Threads == 1 &&
			args.FailOnError &&
			!args.FailOnWarning &&
			args.TextOutput == "" &&
			args.XMLOutput == ""
	})).Return(nil)

	err := execute("previous.yaml", "differences.xml")
	require.NoError(t, err)
}

func TestCheckCmd_Flags(t *testing.T) {
	mockWorkflow, execute := newTestCheckCmd(t)

	mockWorkflow.On("Check", mock.Anything, mock.MatchedBy(func(args domain.CheckArgs) bool {
		return args.MinSeverity == m.SeverityError &&
			assert.ObjectsAreEqual([]m.Code{m.CodeMethodRemoved, 7012}, args.Policy.IncludeCodes) &&
			assert.ObjectsAreEqual([]m.Code{1001}, args.Policy.ExcludeCodes) &&
			!args.Policy.SkipDeprecated &&
			assert.ObjectsAreEqual([]string{"com.acme.Adapter"}, args.Policy.AdapterAnnotations) &&
			assert.ObjectsAreEqual([]string{"com.acme.Callback"}, args.Policy.ExternalInvocationAnnotations) &&
			args.Threads == 3 &&
			args.FailOnWarning &&
			args.XMLOutput == m.Path("out/report.xml") &&
			args.TextOutput == m.Path("out/report.txt") &&
			assert.ObjectsAreEqual([]m.Path{"lib/core.yaml"}, args.Classpath)
	})).Return(nil)

	err := execute(
		"previous.yaml", "differences.yaml",
		"--min-severity", "error",
		"--include-code", "7002",
		"--include-code", "7012",
		"--exclude-code", "1001",
		"--skip-deprecated=false",
		"--adapter-annotation", "com.acme.Adapter",
		"--external-annotation", "com.acme.Callback",
		"-p", "3",
		"--fail-on-warning",
		"--xml-output", "out/report.xml",
		"--text-output", "out/report.txt",
		"--classpath", "lib/core.yaml",
	)
	require.NoError(t, err)
}

func TestCheckCmd_InvalidSeverity(t *testing.T) {
	_, execute := newTestCheckCmd(t)

	err := execute("previous.yaml", "differences.yaml", "--min-severity", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min severity")
}

func TestCheckCmd_PropagatesIncompatible(t *testing.T) {
	mockWorkflow, execute := newTestCheckCmd(t)

	mockWorkflow.On("Check", mock.Anything, mock.Anything).Return(domain.ErrIncompatible)

	err := execute("previous.yaml", "differences.yaml")
	require.ErrorIs(t, err, domain.ErrIncompatible)
}

func TestCheckCmd_RequiresTwoArgs(t *testing.T) {
	_, execute := newTestCheckCmd(t)

	err := execute("previous.yaml")
	require.Error(t, err)
}

func TestNewCheckCmd(t *testing.T) {
	cmd := newCheckCmd()

	assert.Equal(t, "check <previous-snapshot> <differences>", cmd.Use)
	assert.Equal(t, checkLongDescription, cmd.Long)

	for _, name := range []string{
		"min-severity", "include-code", "exclude-code", "skip-deprecated",
		"deprecation-annotation", "adapter-annotation", "external-annotation",
		parallelFlagName, "fail-on-error", "fail-on-warning", "text-output", "xml-output",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
