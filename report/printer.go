package report

import (
	"fmt"
	"io"

	"github.com/rodaine/table"
)

// PrintReport writes a plain-text rendering of the report to w: a table of
// broken links followed by a one-line summary. Intended for non-TTY use;
// the TUI renders its own styled summary.
func PrintReport(w io.Writer, rep *AuditReport) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	if len(rep.BrokenLinks) == 0 {
		writef("No broken links found!\n")
	} else {
		tbl := table.New("URL", "Status", "Error", "Method").WithWriter(w)
		for _, link := range rep.BrokenLinks {
			status := ""
			if link.StatusCode != 0 {
				status = fmt.Sprintf("%d", link.StatusCode)
			}
			tbl.AddRow(link.URL, status, link.Error, string(link.Method))
		}
		tbl.Print()
	}

	writef("Checked %d links on %s: %d healthy, %d broken, %d unresolved\n",
		rep.TotalLinks, rep.BaseURL, rep.HealthyCount, len(rep.BrokenLinks), rep.UnresolvedCount)
}
