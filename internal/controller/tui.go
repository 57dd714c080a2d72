package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

// reservedLines is the room taken by the title and footer around the pager.
const reservedLines = 4

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI for terminals: long output opens a scrollable pager,
// short output is printed directly.
type TUI struct {
	*SimpleUI
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{
		SimpleUI: NewSimpleUI(cmd),
		output:   cmd.OutOrStdout(),
	}
}

// DisplayDifferences shows the reported differences, paged when needed.
func (p *TUI) DisplayDifferences(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.page(ctx, differencesTitle(report.Summary), renderDifferences(report))
}

// DisplayType shows a resolved type, paged when needed.
func (p *TUI) DisplayType(ctx context.Context, t *m.TypeDescriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.page(ctx, titleStyle.Render(t.Name), renderType(t))
}

func differencesTitle(summary m.Summary) string {
	switch {
	case summary.Errors > 0:
		return errorStyle.Render(fmt.Sprintf("✗ %d incompatible change(s)", summary.Errors))
	case summary.Reported > 0:
		return titleStyle.Render(fmt.Sprintf("%d reported difference(s)", summary.Reported))
	}

	return okStyle.Render("✓ no reportable differences")
}

func (p *TUI) page(ctx context.Context, title, body string) error {
	width, height := p.terminalSize()

	if height == 0 || strings.Count(body, "\n")+reservedLines <= height {
		_, err := fmt.Fprintf(p.output, "%s\n\n%s", title, body)
		return err
	}

	program := tea.NewProgram(
		newPagerModel(title, body, width, height),
		tea.WithOutput(p.output),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run pager: %w", err)
	}

	return nil
}

func (p *TUI) terminalSize() (int, int) {
	f, ok := p.output.(*os.File)
	if !ok {
		return 0, 0
	}

	width, height, err := term.GetSize(f.Fd())
	if err != nil {
		return 0, 0
	}

	return width, height
}

// pagerModel is the Bubble Tea model of the scrollable output view.
type pagerModel struct {
	title    string
	viewport viewport.Model
}

func newPagerModel(title, content string, width, height int) pagerModel {
	vp := viewport.New(width, max(1, height-reservedLines))
	vp.SetContent(content)

	return pagerModel{title: title, viewport: vp}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return pm, tea.Quit
		case "g", "home":
			pm.viewport.GotoTop()
			return pm, nil
		case "G", "end":
			pm.viewport.GotoBottom()
			return pm, nil
		}
	case tea.WindowSizeMsg:
		pm.viewport.Width = msg.Width
		pm.viewport.Height = max(1, msg.Height-reservedLines)
	}

	var cmd tea.Cmd
	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	footer := helpStyle.Render(fmt.Sprintf("%3.f%% | ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit",
		pm.viewport.ScrollPercent()*100))

	return pm.title + "\n\n" + pm.viewport.View() + "\n" + footer
}
