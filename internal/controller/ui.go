// Package controller provides output adapters for displaying API check results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

// UI defines how check results and resolved declarations are shown.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplayDifferences(ctx context.Context, report m.Report) error
	DisplayType(ctx context.Context, t *m.TypeDescriptor) error
	DisplayMember(ctx context.Context, className string, member *m.MemberDescriptor) error
	DisplayNotFound(ctx context.Context, reference string, err error) error
	DisplaySnapshotInfo(ctx context.Context, path m.Path, snapshot *m.Snapshot) error
	DisplayCodes(ctx context.Context, codes []m.Code) error
}

// NewUI picks the pager for terminals and plain tables otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
