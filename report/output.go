package report

import (
	"fmt"
	"io"

	"encoding/json"

	"github.com/gocarina/gocsv"
)

// WriteJSON writes the full report as formatted JSON for CI integration.
func WriteJSON(w io.Writer, rep *AuditReport) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// WriteCSV writes the broken links as CSV with a header row, even when the
// slice is empty.
func WriteCSV(w io.Writer, links []Outcome) error {
	rows := links
	if rows == nil {
		rows = []Outcome{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv output: %w", err)
	}
	return nil
}
