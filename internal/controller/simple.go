package controller

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

const (
	noneLabel     = "-"
	notFoundLabel = "not found"
)

// SimpleUI implements UI by printing tables to the command output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayDifferences prints the reported differences and the run summary.
func (s *SimpleUI) DisplayDifferences(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderDifferences(report))

	return nil
}

// DisplayType prints a resolved type with its members.
func (s *SimpleUI) DisplayType(ctx context.Context, t *m.TypeDescriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderType(t))

	return nil
}

// DisplayMember prints a resolved method or field.
func (s *SimpleUI) DisplayMember(ctx context.Context, className string, member *m.MemberDescriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderMember(className, member))

	return nil
}

// DisplayNotFound tells the user a reference did not resolve.
func (s *SimpleUI) DisplayNotFound(ctx context.Context, reference string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("%s: %s (%v)\n", reference, notFoundLabel, err)
		return nil
	}

	s.printf("%s: %s\n", reference, notFoundLabel)

	return nil
}

// DisplaySnapshotInfo prints what a snapshot run produced.
func (s *SimpleUI) DisplaySnapshotInfo(ctx context.Context, path m.Path, snapshot *m.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("Wrote snapshot %q with %d type(s) to %s\n", snapshot.Name, snapshot.Count(), path)

	return nil
}

// DisplayCodes prints the table of well-known difference codes.
func (s *SimpleUI) DisplayCodes(ctx context.Context, codes []m.Code) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderCodes(codes))

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderDifferences(report m.Report) string {
	var buf bytes.Buffer

	if len(report.Records) > 0 {
		table := tablewriter.NewWriter(&buf)
		table.SetHeader([]string{"Severity", "Code", "Class", "Member", "Message"})
		table.SetBorder(false)
		table.SetCenterSeparator("")
		table.SetAutoWrapText(false)
		table.SetColumnAlignment([]int{
			tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		})

		for _, record := range report.Records {
			table.Append([]string{
				record.Severity.String(),
				fmt.Sprintf("%d", record.Code),
				record.AffectedClass,
				memberLabel(record),
				record.Message,
			})
		}

		table.Render()
		buf.WriteString("\n")
	}

	buf.WriteString(renderSummary(report.Summary))

	return buf.String()
}

func renderSummary(summary m.Summary) string {
	return fmt.Sprintf(
		"%d difference(s) read, %d below threshold, %d filtered, %d reported (%d error(s), %d warning(s), %d info)\n",
		summary.Total, summary.BelowSeverity, summary.Filtered, summary.Reported,
		summary.Errors, summary.Warnings, summary.Infos,
	)
}

func memberLabel(record m.DifferenceRecord) string {
	switch record.Scope() {
	case m.ScopeMethod:
		return record.AffectedMethod
	case m.ScopeField:
		return record.AffectedField
	}

	return noneLabel
}

func renderType(t *m.TypeDescriptor) string {
	var buf bytes.Buffer

	// the kind already says "interface"
	header := append((t.Modifiers &^ m.ModInterface).Keywords(), string(t.Kind), t.Name)
	fmt.Fprintf(&buf, "%s\n", strings.Join(header, " "))

	if parent := t.Parent(); parent != nil {
		fmt.Fprintf(&buf, "  nested in %s\n", parent.Name)
	}

	for _, annotation := range t.Annotations {
		fmt.Fprintf(&buf, "  @%s\n", annotation)
	}

	members := slices.Concat(t.Fields, t.Methods)
	if len(members) > 0 || len(t.Nested) > 0 {
		buf.WriteString("\n")

		table := tablewriter.NewWriter(&buf)
		table.SetHeader([]string{"Kind", "Declaration", "Annotations"})
		table.SetBorder(false)
		table.SetCenterSeparator("")
		table.SetAutoWrapText(false)

		for _, member := range members {
			table.Append([]string{string(member.Kind), member.Signature(), annotationsLabel(member.Annotations)})
		}

		for _, nested := range t.Nested {
			table.Append([]string{string(nested.Kind), nested.Name, annotationsLabel(nested.Annotations)})
		}

		table.Render()
	}

	return buf.String()
}

func renderMember(className string, member *m.MemberDescriptor) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s in %s\n", member.Kind, member.Signature(), className)

	for _, annotation := range member.Annotations {
		fmt.Fprintf(&b, "  @%s\n", annotation)
	}

	return b.String()
}

func renderCodes(codes []m.Code) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Code", "Meaning"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT})

	for _, code := range codes {
		table.Append([]string{fmt.Sprintf("%d", code), code.Description()})
	}

	table.SetFooter([]string{fmt.Sprintf("%d", len(codes)), "codes"})
	table.Render()

	return buf.String()
}

func annotationsLabel(annotations []string) string {
	if len(annotations) == 0 {
		return noneLabel
	}

	return strings.Join(annotations, ", ")
}
