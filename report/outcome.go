// Package report defines the per-link outcome model and the aggregation of
// outcomes into a page audit report.
package report

// Status is the final reachability verdict for one link.
type Status string

const (
	// StatusHealthy means the link answered with a status code below 400.
	StatusHealthy Status = "healthy"
	// StatusBroken means the link answered with a status code of 400 or
	// above, or could not be reached at all after both probe tiers.
	StatusBroken Status = "broken"
	// StatusUnresolved means no probe was possible: the raw href could not
	// be parsed into a usable absolute URL, or the batch was cancelled
	// before the link's turn came.
	StatusUnresolved Status = "unresolved"
)

// Method records which probe tier produced the final classification.
type Method string

const (
	// MethodHead is the lightweight header-only probe.
	MethodHead Method = "head"
	// MethodGet is the full-body fallback probe.
	MethodGet Method = "get"
)

// Outcome is the result of checking a single link. Exactly one Outcome is
// produced per non-skipped link per run; it is never mutated after creation.
type Outcome struct {
	URL        string   `json:"url" csv:"url"`
	Raw        string   `json:"raw,omitempty" csv:"raw"`
	Status     Status   `json:"status" csv:"status"`
	StatusCode int      `json:"status_code,omitempty" csv:"status_code"`
	LatencyMs  int64    `json:"latency_ms,omitempty" csv:"latency_ms"`
	Method     Method   `json:"method,omitempty" csv:"method"`
	Error      string   `json:"error,omitempty" csv:"error"`
	Category   Category `json:"category,omitempty" csv:"category"`
}
