package report

import "time"

// AuditReport is the complete output of auditing one page's outbound links.
// The caller owns the report after it is returned; the engine keeps no
// reference to it.
type AuditReport struct {
	BaseURL         string        `json:"base_url"`
	TotalLinks      int           `json:"total_links"`
	BrokenLinks     []Outcome     `json:"broken_links"`
	HealthyCount    int           `json:"healthy_count"`
	UnresolvedCount int           `json:"unresolved_count"`
	GeneratedAt     time.Time     `json:"generated_at"`
	Duration        time.Duration `json:"duration_ns"`
}

// Aggregate partitions outcomes into an AuditReport. Outcomes must be in
// page order (the scheduler returns them that way regardless of completion
// timing), so BrokenLinks preserves first-seen order and reports are
// reproducible across runs with different network jitter.
//
// Aggregate performs no I/O.
func Aggregate(baseURL string, outcomes []Outcome) *AuditReport {
	rep := &AuditReport{
		BaseURL:     baseURL,
		TotalLinks:  len(outcomes),
		BrokenLinks: []Outcome{},
		GeneratedAt: time.Now(),
	}

	for _, o := range outcomes {
		switch o.Status {
		case StatusHealthy:
			rep.HealthyCount++
		case StatusBroken:
			rep.BrokenLinks = append(rep.BrokenLinks, o)
		case StatusUnresolved:
			rep.UnresolvedCount++
		}
	}

	return rep
}
