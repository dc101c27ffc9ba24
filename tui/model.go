// Package tui provides the Bubble Tea terminal UI for linkaudit,
// displaying live probe progress and a styled summary of the audit report.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pageaudit/linkaudit/probe"
	"github.com/pageaudit/linkaudit/report"
)

// Runner executes the audit and returns its report. The TUI stays
// decoupled from how the audit is assembled.
type Runner func(ctx context.Context) (*report.AuditReport, error)

// Model is the Bubble Tea model for the audit TUI.
type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	run        Runner
	spinner    spinner.Model
	progressCh <-chan probe.ProgressEvent

	checked  int
	broken   int
	current  string
	quitting bool
	done     bool
	report   *report.AuditReport
	err      error
	width    int
}

// NewModel creates a TUI model wired to the given audit runner and
// progress channel.
func NewModel(ctx context.Context, cancel context.CancelFunc, run Runner, progressCh <-chan probe.ProgressEvent) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		ctx:        ctx,
		cancel:     cancel,
		run:        run,
		spinner:    spin,
		progressCh: progressCh,
	}
}

// Init starts the spinner, the audit, and the progress listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startAudit(), waitForProgress(m.progressCh))
}

func (m Model) startAudit() tea.Cmd {
	return func() tea.Msg {
		rep, err := m.run(m.ctx)
		if err != nil {
			err = fmt.Errorf("audit: %w", err)
		}
		return AuditDoneMsg{Report: rep, Err: err}
	}
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case AuditProgressMsg:
		m.checked = msg.Checked
		m.broken = msg.Broken
		m.current = msg.URL
		return m, waitForProgress(m.progressCh)

	case AuditDoneMsg:
		m.done = true
		m.report = msg.Report
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done && m.report != nil {
		return RenderSummary(m.report)
	}
	if m.done && m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	return fmt.Sprintf("%s Probing... checked %d, broken %d\n%s\n",
		m.spinner.View(), m.checked, m.broken,
		dimStyle.Render("  "+m.current))
}

// HasBrokenLinks reports whether the audit found any broken links.
func (m Model) HasBrokenLinks() bool {
	return m.report != nil && len(m.report.BrokenLinks) > 0
}

// Report returns the audit report for output formatting.
func (m Model) Report() *report.AuditReport {
	return m.report
}
