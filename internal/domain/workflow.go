package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"apicheck.dev/pkg/apicheck/internal/adapter"
	"apicheck.dev/pkg/apicheck/internal/controller"
	m "apicheck.dev/pkg/apicheck/internal/model"
)

// ErrIncompatible is returned by Check when the failure policy is triggered.
var ErrIncompatible = errors.New("incompatible API changes found")

// ErrOutputIsDir is returned when a snapshot would overwrite a directory.
var ErrOutputIsDir = errors.New("is a directory")

// CheckArgs contains the arguments for filtering a comparator run.
type CheckArgs struct {
	Previous      m.Path
	Differences   m.Path
	Classpath     []m.Path
	Policy        Policy
	MinSeverity   m.Severity
	Threads       int
	FailOnError   bool
	FailOnWarning bool
	TextOutput    m.Path
	XMLOutput     m.Path
}

// SnapshotArgs contains the arguments for extracting a snapshot from sources.
type SnapshotArgs struct {
	Paths          []m.Path
	Exclude        []string
	IncludeClasses []string
	ExcludeClasses []string
	Name           string
	Output         m.Path
	Threads        int
}

// InspectArgs names the declaration to resolve in a snapshot.
type InspectArgs struct {
	Snapshot  m.Path
	Classpath []m.Path
	Class     string
	Method    string
	Field     string
}

// Workflow defines the runs the CLI exposes.
type Workflow interface {
	Check(ctx context.Context, args CheckArgs) error
	Snapshot(ctx context.Context, args SnapshotArgs) error
	Inspect(ctx context.Context, args InspectArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.SnapshotStore
	adapter.DifferenceSource
	adapter.ReportStore
	adapter.JavaSourceAdapter
	controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	snapshotStore adapter.SnapshotStore,
	differenceSource adapter.DifferenceSource,
	reportStore adapter.ReportStore,
	javaAdapter adapter.JavaSourceAdapter,
	ui controller.UI,
) Workflow {
	return &workflow{
		SourceFSAdapter:   fsAdapter,
		SnapshotStore:     snapshotStore,
		DifferenceSource:  differenceSource,
		ReportStore:       reportStore,
		JavaSourceAdapter: javaAdapter,
		UI:                ui,
	}
}

func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	resolver, err := w.resolver(args.Previous, args.Classpath)
	if err != nil {
		return err
	}

	chain := NewFilterChainFromPolicy(args.Policy, resolver)

	records, err := w.Read(args.Differences)
	if err != nil {
		return fmt.Errorf("read differences: %w", err)
	}

	candidates := AboveSeverity(records, args.MinSeverity)

	var kept []m.DifferenceRecord
	if args.Threads > 1 {
		kept, err = FilterRecords(ctx, chain, candidates, args.Threads)
		if err != nil {
			return fmt.Errorf("filter differences: %w", err)
		}
	} else {
		kept = chain.Apply(candidates)
	}

	report := m.Report{
		Records: kept,
		Summary: m.Summarize(len(records), len(records)-len(candidates), kept),
	}

	slog.Info("Filtered differences",
		"total", report.Summary.Total,
		"belowSeverity", report.Summary.BelowSeverity,
		"filtered", report.Summary.Filtered,
		"reported", report.Summary.Reported,
		"filters", chain.Len())

	if err := w.DisplayDifferences(ctx, report); err != nil {
		return fmt.Errorf("display differences: %w", err)
	}

	if err := w.saveReports(args, kept); err != nil {
		return err
	}

	return checkFailure(report.Summary, args)
}

func (w *workflow) saveReports(args CheckArgs, records []m.DifferenceRecord) error {
	if args.TextOutput != "" {
		if err := w.SaveText(args.TextOutput, records); err != nil {
			slog.Error("Failed to save text report", "path", args.TextOutput, "error", err)
			return fmt.Errorf("save text report: %w", err)
		}
	}

	if args.XMLOutput != "" {
		if err := w.SaveXML(args.XMLOutput, records); err != nil {
			slog.Error("Failed to save xml report", "path", args.XMLOutput, "error", err)
			return fmt.Errorf("save xml report: %w", err)
		}
	}

	return nil
}

func checkFailure(summary m.Summary, args CheckArgs) error {
	if args.FailOnError && summary.Errors > 0 {
		return fmt.Errorf("%d error(s): %w", summary.Errors, ErrIncompatible)
	}

	if args.FailOnWarning && summary.Warnings > 0 {
		return fmt.Errorf("%d warning(s): %w", summary.Warnings, ErrIncompatible)
	}

	return nil
}

// AboveSeverity keeps the records at or above the threshold, in order.
func AboveSeverity(records []m.DifferenceRecord, threshold m.Severity) []m.DifferenceRecord {
	kept := make([]m.DifferenceRecord, 0, len(records))

	for _, record := range records {
		if record.Severity >= threshold {
			kept = append(kept, record)
		}
	}

	return kept
}

// FilterRecords evaluates the filter for every record with up to threads
// workers and returns the included records in input order.
func FilterRecords(ctx context.Context, filter Filter, records []m.DifferenceRecord, threads int) ([]m.DifferenceRecord, error) {
	include := make([]bool, len(records))

	group, groupCtx := errgroup.WithContext(ctx)
	if threads > 0 {
		group.SetLimit(threads)
	}

	for i, record := range records {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			include[i] = filter.ShouldInclude(record)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	kept := make([]m.DifferenceRecord, 0, len(records))

	for i, record := range records {
		if include[i] {
			kept = append(kept, record)
		}
	}

	return kept, nil
}

func (w *workflow) Snapshot(ctx context.Context, args SnapshotArgs) error {
	classFilter, err := adapter.NewClassFilter(args.IncludeClasses, args.ExcludeClasses)
	if err != nil {
		return fmt.Errorf("class filter: %w", err)
	}

	if info, err := w.FileInfo(args.Output); err == nil && info.IsDir() {
		return fmt.Errorf("snapshot output %s: %w", args.Output, ErrOutputIsDir)
	}

	files, err := w.Get(ctx, args.Paths, args.Exclude...)
	if err != nil {
		return fmt.Errorf("get sources: %w", err)
	}

	parsed := make([][]*m.TypeDescriptor, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	if args.Threads > 0 {
		group.SetLimit(args.Threads)
	}

	for i, file := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			src, err := w.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read source %s: %w", file, err)
			}

			types, err := w.ParseTypes(file, src)
			if err != nil {
				slog.Error("Failed to parse source", "path", file, "error", err)
				return err
			}

			parsed[i] = types

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("parse sources: %w", err)
	}

	snapshot := m.NewSnapshot(args.Name, selectTypes(files, parsed, classFilter))

	if err := w.Save(args.Output, snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.Info("Wrote snapshot", "path", args.Output, "files", len(files), "types", snapshot.Count())

	return w.DisplaySnapshotInfo(ctx, args.Output, snapshot)
}

// selectTypes keeps the top-level types the class filter selects, dropping
// later duplicates of an already declared name.
func selectTypes(files []m.Path, parsed [][]*m.TypeDescriptor, classFilter *adapter.ClassFilter) []*m.TypeDescriptor {
	seen := make(m.Set[string])

	var types []*m.TypeDescriptor

	for i, fileTypes := range parsed {
		for _, t := range fileTypes {
			if !classFilter.Match(t.Name) {
				continue
			}

			if seen.Contains(t.Name) {
				slog.Warn("Duplicate type declaration", "type", t.Name, "path", files[i])
				continue
			}

			seen[t.Name] = struct{}{}
			types = append(types, t)
		}
	}

	return types
}

func (w *workflow) Inspect(ctx context.Context, args InspectArgs) error {
	resolver, err := w.resolver(args.Snapshot, args.Classpath)
	if err != nil {
		return err
	}

	reference := args.Class

	switch {
	case args.Method != "":
		reference += " " + args.Method

		member, err := resolver.ResolveMethod(args.Class, args.Method)
		if err != nil {
			return w.displayResolveError(ctx, reference, err)
		}

		return w.DisplayMember(ctx, declaringName(member, args.Class), member)
	case args.Field != "":
		reference += "#" + args.Field

		member, err := resolver.ResolveField(args.Class, args.Field)
		if err != nil {
			return w.displayResolveError(ctx, reference, err)
		}

		return w.DisplayMember(ctx, declaringName(member, args.Class), member)
	}

	t, err := resolver.ResolveType(args.Class)
	if err != nil {
		return w.displayResolveError(ctx, reference, err)
	}

	return w.DisplayType(ctx, t)
}

// declaringName prefers the binary name of the declaring type over the
// reference the user typed.
func declaringName(member *m.MemberDescriptor, reference string) string {
	if declaring := member.DeclaringType(); declaring != nil {
		return declaring.Name
	}

	return reference
}

func (w *workflow) displayResolveError(ctx context.Context, reference string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return w.DisplayNotFound(ctx, reference, nil)
	}

	return fmt.Errorf("resolve %s: %w", reference, err)
}

// resolver loads a snapshot and its classpath into a SymbolResolver.
func (w *workflow) resolver(path m.Path, classpath []m.Path) (SymbolResolver, error) {
	snapshot, err := w.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	loader, err := adapter.LoadClasspath(w.SnapshotStore, snapshot, classpath)
	if err != nil {
		return nil, err
	}

	return NewSymbolResolver(loader), nil
}
