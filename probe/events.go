package probe

import "github.com/pageaudit/linkaudit/report"

// ProgressEvent reports one completed probe to an observer such as the TUI.
type ProgressEvent struct {
	URL        string
	Status     report.Status
	StatusCode int
	Checked    int // probes completed so far, including this one
	Broken     int // broken outcomes so far
}
