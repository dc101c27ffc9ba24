package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pageaudit/linkaudit/report"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	successStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle         = lipgloss.NewStyle().Faint(true)
	urlStyle         = lipgloss.NewStyle()
	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// categoryOrder defines display order, most to least actionable.
var categoryOrder = []report.Category{
	report.Category4xx,
	report.Category5xx,
	report.CategoryTimeout,
	report.CategoryDNSFailure,
	report.CategoryConnectionRefused,
	report.CategoryRedirectLoop,
	report.CategoryUnknown,
}

// RenderSummary produces a Lip Gloss styled summary of the audit report.
func RenderSummary(rep *report.AuditReport) string {
	if rep == nil {
		return errorStyle.Render("No report available.")
	}

	var builder strings.Builder

	if len(rep.BrokenLinks) == 0 {
		builder.WriteString(successStyle.Render("No broken links found!"))
		builder.WriteString("\n")
		builder.WriteString(dimStyle.Render(fmt.Sprintf(
			"Checked %d links on %s in %s",
			rep.TotalLinks, rep.BaseURL, rep.Duration.Round(1_000_000),
		)))
		builder.WriteString("\n")
		builder.WriteString(statLine(rep))
		return builder.String()
	}

	grouped := make(map[report.Category][]report.Outcome)
	for _, link := range rep.BrokenLinks {
		cat := link.Category
		if cat == "" {
			cat = report.CategoryUnknown
		}
		grouped[cat] = append(grouped[cat], link)
	}

	for _, cat := range categoryOrder {
		links := grouped[cat]
		if len(links) == 0 {
			continue
		}

		builder.WriteString(categoryStyle.Render(fmt.Sprintf("## %s (%d)", report.FormatCategory(cat), len(links))))
		builder.WriteString("\n")

		rows := make([][]string, 0, len(links))
		for _, link := range links {
			status := fmt.Sprintf("%d", link.StatusCode)
			if link.Error != "" {
				status = link.Error
			}
			rows = append(rows, []string{link.URL, status, string(link.Method)})
		}

		catTable := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("URL", "Status", "Probe").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if col == 1 {
					return statusErrorStyle
				}
				return urlStyle
			}).
			Rows(rows...)

		builder.WriteString(catTable.Render())
		builder.WriteString("\n\n")
	}

	builder.WriteString(titleStyle.Render(fmt.Sprintf(
		"Found %d broken links out of %d checked (%s)",
		len(rep.BrokenLinks), rep.TotalLinks, rep.Duration.Round(1_000_000),
	)))
	builder.WriteString("\n")
	builder.WriteString(statLine(rep))

	return builder.String()
}

func statLine(rep *report.AuditReport) string {
	return dimStyle.Render(fmt.Sprintf(
		"healthy %d / broken %d / unresolved %d",
		rep.HealthyCount, len(rep.BrokenLinks), rep.UnresolvedCount,
	)) + "\n"
}
