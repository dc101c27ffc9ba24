package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pageaudit/linkaudit/probe"
	"github.com/pageaudit/linkaudit/report"
)

// AuditProgressMsg reports progress for a single probed link.
type AuditProgressMsg struct {
	Checked int
	Broken  int
	URL     string
}

// AuditDoneMsg signals the audit has completed.
type AuditDoneMsg struct {
	Report *report.AuditReport
	Err    error
}

// waitForProgress returns a tea.Cmd that reads one event from the progress
// channel. When the channel closes it returns an AuditDoneMsg with nil
// Report (the real report comes from the audit runner).
func waitForProgress(ch <-chan probe.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return AuditDoneMsg{}
		}
		return AuditProgressMsg{
			Checked: evt.Checked,
			Broken:  evt.Broken,
			URL:     evt.URL,
		}
	}
}
