package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"apicheck.dev/pkg/apicheck/internal/adapter"
	adaptermocks "apicheck.dev/pkg/apicheck/internal/adapter/mocks"
	controllermocks "apicheck.dev/pkg/apicheck/internal/controller/mocks"
	m "apicheck.dev/pkg/apicheck/internal/model"
)

const differencesYAML = `
- code: 7002
  severity: error
  class: com.acme.Service
  method: public abstract void start()
  message: Method 'public abstract void start()' has been removed
- code: 7002
  severity: error
  class: com.acme.Service
  method: public abstract void stop()
  message: Method 'public abstract void stop()' has been removed
- code: 7012
  severity: error
  class: com.acme.Listener
  method: public abstract void onClose()
  message: Method 'public abstract void onClose()' has been added to an interface
- code: 6000
  severity: info
  class: com.acme.Service
  field: RETRIES
  message: Added public field RETRIES
- code: 7009
  severity: warning
  class: com.acme.Client
  method: public void ping()
  message: Accessibility of method 'public void ping()' has been decreased
`

type workflowFixture struct {
	dir      string
	fs       *adapter.LocalSourceFSAdapter
	ui       *controllermocks.MockUI
	workflow Workflow
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	fs := adapter.NewLocalSourceFSAdapter()
	ui := controllermocks.NewMockUI(t)

	return &workflowFixture{
		dir: t.TempDir(),
		fs:  fs,
		ui:  ui,
		workflow: NewWorkflow(
			fs,
			adapter.NewSnapshotStore(fs),
			adapter.NewDifferenceSource(fs),
			adapter.NewReportStore(fs),
			adapter.NewTreeSitterJavaAdapter(),
			ui,
		),
	}
}

func (f *workflowFixture) path(name string) m.Path {
	return m.Path(filepath.Join(f.dir, name))
}

func (f *workflowFixture) write(t *testing.T, name, content string) m.Path {
	t.Helper()

	path := f.path(name)
	require.NoError(t, f.fs.WriteFile(path, []byte(content)))

	return path
}

func (f *workflowFixture) saveSnapshot(t *testing.T, name string, snapshot *m.Snapshot) m.Path {
	t.Helper()

	path := f.path(name)
	require.NoError(t, adapter.NewSnapshotStore(f.fs).Save(path, snapshot))

	return path
}

func TestWorkflow_Check(t *testing.T) {
	f := newWorkflowFixture(t)

	previous := f.saveSnapshot(t, "previous.yaml", previousSnapshot())
	differences := f.write(t, "differences.yaml", differencesYAML)

	var shown m.Report

	f.ui.On("DisplayDifferences", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { shown = args.Get(1).(m.Report) }).
		Return(nil)

	policy := DefaultPolicy()
	policy.AdapterAnnotations = []string{"com.acme.Adapter"}

	err := f.workflow.Check(context.Background(), CheckArgs{
		Previous:    previous,
		Differences: differences,
		Policy:      policy,
		MinSeverity: m.SeverityWarning,
		Threads:     2,
		FailOnError: true,
		TextOutput:  f.path("out/report.txt"),
		XMLOutput:   f.path("out/report.xml"),
	})
	require.ErrorIs(t, err, ErrIncompatible)

	require.Len(t, shown.Records, 2)
	assert.Equal(t, "public abstract void stop()", shown.Records[0].AffectedMethod)
	assert.Equal(t, "com.acme.Client", shown.Records[1].AffectedClass)
	assert.Equal(t, m.Summary{
		Total:         5,
		BelowSeverity: 1,
		Filtered:      2,
		Reported:      2,
		Errors:        1,
		Warnings:      1,
	}, shown.Summary)

	text, err := os.ReadFile(string(f.path("out/report.txt")))
	require.NoError(t, err)
	assert.Equal(t,
		"ERROR: 7002: com.acme.Service: Method 'public abstract void stop()' has been removed\n"+
			"WARNING: 7009: com.acme.Client: Accessibility of method 'public void ping()' has been decreased\n",
		string(text))

	reread, err := adapter.NewDifferenceSource(f.fs).Read(f.path("out/report.xml"))
	require.NoError(t, err)
	assert.Equal(t, shown.Records, reread)
}

func TestWorkflow_Check_SequentialMatchesParallel(t *testing.T) {
	f := newWorkflowFixture(t)

	previous := f.saveSnapshot(t, "previous.yaml", previousSnapshot())
	differences := f.write(t, "differences.yaml", differencesYAML)

	var shown []m.Report

	f.ui.On("DisplayDifferences", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { shown = append(shown, args.Get(1).(m.Report)) }).
		Return(nil)

	for _, threads := range []int{1, 4} {
		err := f.workflow.Check(context.Background(), CheckArgs{
			Previous:    previous,
			Differences: differences,
			Policy:      DefaultPolicy(),
			MinSeverity: m.SeverityInfo,
			Threads:     threads,
		})
		require.NoError(t, err)
	}

	require.Len(t, shown, 2)
	assert.Equal(t, shown[0], shown[1])
	assert.NotEmpty(t, shown[0].Records)
}

func TestWorkflow_Check_FailurePolicy(t *testing.T) {
	tests := []struct {
		name          string
		failOnError   bool
		failOnWarning bool
		minSeverity   m.Severity
		wantErr       bool
	}{
		{"errors remain", true, false, m.SeverityInfo, true},
		{"errors tolerated", false, false, m.SeverityInfo, false},
		{"warnings fail", false, true, m.SeverityInfo, true},
		{"both policies enabled", true, true, m.SeverityInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkflowFixture(t)

			previous := f.saveSnapshot(t, "previous.yaml", previousSnapshot())
			differences := f.write(t, "differences.yaml", differencesYAML)

			f.ui.On("DisplayDifferences", mock.Anything, mock.Anything).Return(nil)

			err := f.workflow.Check(context.Background(), CheckArgs{
				Previous:      previous,
				Differences:   differences,
				Policy:        DefaultPolicy(),
				MinSeverity:   tt.minSeverity,
				FailOnError:   tt.failOnError,
				FailOnWarning: tt.failOnWarning,
			})

			if tt.wantErr {
				require.ErrorIs(t, err, ErrIncompatible)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestWorkflow_Check_InfoOnlyPasses(t *testing.T) {
	f := newWorkflowFixture(t)

	previous := f.saveSnapshot(t, "previous.yaml", previousSnapshot())
	differences := f.write(t, "differences.json", `[{"code": 6000, "severity": "info", "class": "com.acme.Service", "field": "RETRIES"}]`)

	f.ui.On("DisplayDifferences", mock.Anything, mock.MatchedBy(func(report m.Report) bool {
		return report.Summary.Reported == 1 && report.Summary.Infos == 1
	})).Return(nil)

	err := f.workflow.Check(context.Background(), CheckArgs{
		Previous:      previous,
		Differences:   differences,
		Policy:        DefaultPolicy(),
		FailOnError:   true,
		FailOnWarning: true,
	})
	require.NoError(t, err)
}

func TestWorkflow_Check_Errors(t *testing.T) {
	t.Run("missing snapshot", func(t *testing.T) {
		f := newWorkflowFixture(t)

		err := f.workflow.Check(context.Background(), CheckArgs{
			Previous:    f.path("missing.yaml"),
			Differences: f.write(t, "differences.yaml", differencesYAML),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load snapshot")
	})

	t.Run("ambiguous difference", func(t *testing.T) {
		f := newWorkflowFixture(t)

		err := f.workflow.Check(context.Background(), CheckArgs{
			Previous:    f.saveSnapshot(t, "previous.yaml", previousSnapshot()),
			Differences: f.write(t, "differences.yaml", "code: 7002\nclass: a.B\nmethod: void run()\nfield: X\n"),
		})
		require.ErrorIs(t, err, m.ErrAmbiguousRecord)
	})

	t.Run("report store failure", func(t *testing.T) {
		fs := adapter.NewLocalSourceFSAdapter()
		ui := controllermocks.NewMockUI(t)
		snapshots := adaptermocks.NewMockSnapshotStore(t)
		differences := adaptermocks.NewMockDifferenceSource(t)
		reports := adaptermocks.NewMockReportStore(t)

		wf := NewWorkflow(fs, snapshots, differences, reports, adapter.NewTreeSitterJavaAdapter(), ui)

		records := []m.DifferenceRecord{{Code: m.CodeClassRemoved, Severity: m.SeverityError, AffectedClass: "com.acme.Gone"}}
		boom := errors.New("disk full")

		snapshots.On("Load", m.Path("previous.yaml")).Return(previousSnapshot(), nil)
		differences.On("Read", m.Path("differences.yaml")).Return(records, nil)
		ui.On("DisplayDifferences", mock.Anything, mock.Anything).Return(nil)
		reports.On("SaveText", m.Path("report.txt"), records).Return(boom)

		err := wf.Check(context.Background(), CheckArgs{
			Previous:    "previous.yaml",
			Differences: "differences.yaml",
			Policy:      DefaultPolicy(),
			TextOutput:  "report.txt",
		})
		require.ErrorIs(t, err, boom)
	})
}

func TestWorkflow_Check_Classpath(t *testing.T) {
	f := newWorkflowFixture(t)

	previous := f.saveSnapshot(t, "previous.yaml", m.NewSnapshot("app", nil))
	library := f.saveSnapshot(t, "library.yaml", m.NewSnapshot("lib", []*m.TypeDescriptor{
		{Name: "com.lib.Old", Kind: m.KindClass, Annotations: []string{"java.lang.Deprecated"}},
	}))
	differences := f.write(t, "differences.yaml", "code: 8001\nseverity: error\nclass: com.lib.Old\n")

	f.ui.On("DisplayDifferences", mock.Anything, mock.MatchedBy(func(report m.Report) bool {
		return report.Summary.Total == 1 && report.Summary.Filtered == 1 && len(report.Records) == 0
	})).Return(nil)

	err := f.workflow.Check(context.Background(), CheckArgs{
		Previous:    previous,
		Differences: differences,
		Classpath:   []m.Path{library},
		Policy:      DefaultPolicy(),
		FailOnError: true,
	})
	require.NoError(t, err)
}

func TestFilterRecords_PreservesOrder(t *testing.T) {
	records := make([]m.DifferenceRecord, 0, 100)
	for i := range 100 {
		records = append(records, m.DifferenceRecord{Code: m.Code(1000 + i), AffectedClass: "a.B"})
	}

	filter := NewCodeSetFilter(nil, []m.Code{1003, 1050, 1099})

	for _, threads := range []int{0, 1, 8} {
		got, err := FilterRecords(context.Background(), filter, records, threads)
		require.NoError(t, err)
		assert.Equal(t, NewFilterChain(filter).Apply(records), got)
		assert.Len(t, got, 97)
	}
}

func TestFilterRecords_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FilterRecords(ctx, NewFilterChain(), []m.DifferenceRecord{{AffectedClass: "a.B"}}, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAboveSeverity(t *testing.T) {
	records := []m.DifferenceRecord{
		{Code: 1, Severity: m.SeverityInfo},
		{Code: 2, Severity: m.SeverityError},
		{Code: 3, Severity: m.SeverityWarning},
	}

	assert.Len(t, AboveSeverity(records, m.SeverityInfo), 3)
	assert.Equal(t, []m.DifferenceRecord{records[1], records[2]}, AboveSeverity(records, m.SeverityWarning))
	assert.Equal(t, []m.DifferenceRecord{records[1]}, AboveSeverity(records, m.SeverityError))
}

const widgetSource = `package com.acme;

import java.util.List;

@Deprecated
public class Widget implements Comparable<Widget> {
    public static final int SIZE = 4;
    private int hidden;

    public Widget(String name) {}

    public List<String> names(int limit, String... filters) { return null; }

    public int compareTo(Widget other) { return 0; }

    public interface Listener {
        void onChange(Widget widget);
    }
}
`

const internalSource = `package com.acme.internal;

public class Helper {
    public void help() {}
}
`

func TestWorkflow_Snapshot(t *testing.T) {
	f := newWorkflowFixture(t)

	f.write(t, "src/com/acme/Widget.java", widgetSource)
	f.write(t, "src/com/acme/internal/Helper.java", internalSource)
	f.write(t, "src/com/acme/WidgetTest.java", "package com.acme;\nclass WidgetTest {}\n")

	output := f.path("api.yaml")

	f.ui.On("DisplaySnapshotInfo", mock.Anything, output, mock.MatchedBy(func(s *m.Snapshot) bool {
		return s.Name == "1.0" && s.Count() == 2
	})).Return(nil)

	err := f.workflow.Snapshot(context.Background(), SnapshotArgs{
		Paths:          []m.Path{m.Path(filepath.Join(f.dir, "src") + "/...")},
		Exclude:        []string{`Test\.java$`},
		ExcludeClasses: []string{"com.acme.internal.**"},
		Name:           "1.0",
		Output:         output,
		Threads:        2,
	})
	require.NoError(t, err)

	snapshot, err := adapter.NewSnapshotStore(f.fs).Load(output)
	require.NoError(t, err)

	resolver := NewSymbolResolver(adapter.NewSnapshotLoader(snapshot))

	widget, err := resolver.ResolveType("com.acme.Widget")
	require.NoError(t, err)
	assert.Equal(t, []string{"java.lang.Deprecated"}, widget.Annotations)

	names, err := resolver.ResolveMethod("com.acme.Widget", "public java.util.List names(int, java.lang.String[])")
	require.NoError(t, err)
	assert.Equal(t, "java.util.List", names.ReturnType)

	_, err = resolver.ResolveMethod("com.acme.Widget", "public Widget(java.lang.String)")
	require.NoError(t, err)

	listener, err := resolver.ResolveMethod("com.acme.Widget$Listener", "public abstract void onChange(com.acme.Widget)")
	require.NoError(t, err)
	assert.Equal(t, "com.acme.Widget$Listener", listener.DeclaringType().Name)

	_, err = resolver.ResolveField("com.acme.Widget", "hidden")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = resolver.ResolveType("com.acme.internal.Helper")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWorkflow_Snapshot_OutputIsDirectory(t *testing.T) {
	f := newWorkflowFixture(t)

	f.write(t, "src/com/acme/Widget.java", widgetSource)
	output := f.path("out")
	require.NoError(t, os.Mkdir(string(output), 0o755))

	err := f.workflow.Snapshot(context.Background(), SnapshotArgs{
		Paths:  []m.Path{m.Path(filepath.Join(f.dir, "src") + "/...")},
		Output: output,
	})
	require.ErrorIs(t, err, ErrOutputIsDir)
}

func TestDeclaringName(t *testing.T) {
	snapshot := previousSnapshot()
	stop := snapshot.Types[0].Methods[1]

	assert.Equal(t, "com.acme.Service", declaringName(stop, "Service"))
	assert.Equal(t, "Service", declaringName(&m.MemberDescriptor{Name: "stop"}, "Service"))
}

func TestWorkflow_Snapshot_ParseError(t *testing.T) {
	f := newWorkflowFixture(t)

	f.write(t, "src/Broken.java", "package com.acme;\npublic class Broken {\n")

	err := f.workflow.Snapshot(context.Background(), SnapshotArgs{
		Paths:  []m.Path{m.Path(filepath.Join(f.dir, "src") + "/...")},
		Output: f.path("api.yaml"),
	})
	require.Error(t, err)

	_, statErr := os.Stat(string(f.path("api.yaml")))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWorkflow_Inspect(t *testing.T) {
	f := newWorkflowFixture(t)

	snapshot := f.saveSnapshot(t, "previous.yaml", previousSnapshot())

	t.Run("type", func(t *testing.T) {
		f.ui.On("DisplayType", mock.Anything, mock.MatchedBy(func(t *m.TypeDescriptor) bool {
			return t.Name == "com.acme.Listener"
		})).Return(nil).Once()

		require.NoError(t, f.workflow.Inspect(context.Background(), InspectArgs{Snapshot: snapshot, Class: "com.acme.Listener"}))
	})

	t.Run("method", func(t *testing.T) {
		f.ui.On("DisplayMember", mock.Anything, "com.acme.Service", mock.MatchedBy(func(member *m.MemberDescriptor) bool {
			return member.Name == "stop"
		})).Return(nil).Once()

		require.NoError(t, f.workflow.Inspect(context.Background(), InspectArgs{
			Snapshot: snapshot,
			Class:    "com.acme.Service",
			Method:   "public void stop()",
		}))
	})

	t.Run("field", func(t *testing.T) {
		f.ui.On("DisplayMember", mock.Anything, "com.acme.Service", mock.MatchedBy(func(member *m.MemberDescriptor) bool {
			return member.Name == "TIMEOUT"
		})).Return(nil).Once()

		require.NoError(t, f.workflow.Inspect(context.Background(), InspectArgs{
			Snapshot: snapshot,
			Class:    "com.acme.Service",
			Field:    "TIMEOUT",
		}))
	})

	t.Run("not found", func(t *testing.T) {
		f.ui.On("DisplayNotFound", mock.Anything, "com.acme.Service pause()", nil).Return(nil).Once()

		require.NoError(t, f.workflow.Inspect(context.Background(), InspectArgs{
			Snapshot: snapshot,
			Class:    "com.acme.Service",
			Method:   "pause()",
		}))
	})

	t.Run("malformed", func(t *testing.T) {
		err := f.workflow.Inspect(context.Background(), InspectArgs{
			Snapshot: snapshot,
			Class:    "com.acme.Service",
			Method:   "void pause(",
		})

		var malformed *MalformedSignatureError
		require.ErrorAs(t, err, &malformed)
	})
}
