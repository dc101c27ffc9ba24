// Package audit ties the resolver, scheduler, and aggregator into the
// single entry point callers use to audit one page's outbound links.
package audit

import (
	"context"
	"fmt"
	"net/url"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pageaudit/linkaudit/probe"
	"github.com/pageaudit/linkaudit/report"
	"github.com/pageaudit/linkaudit/urlutil"
)

// Engine audits the outbound links of a single page. It does not crawl
// beyond that page.
type Engine struct {
	pool *probe.Pool
}

// New creates an Engine. Configuration errors fail here, before any
// probing begins.
func New(cfg probe.Config, progressCh chan<- probe.ProgressEvent) (*Engine, error) {
	pool, err := probe.New(cfg, progressCh)
	if err != nil {
		return nil, err
	}
	return &Engine{pool: pool}, nil
}

// Audit resolves each raw href against baseURL, probes the unique
// resolvable targets under bounded concurrency, and aggregates the
// outcomes into a report.
//
// Per-link failures never surface as errors: unparseable hrefs become
// unresolved outcomes and unreachable targets become broken ones. A fully
// broken page is a valid report. The only error conditions are an invalid
// base URL, which is a caller bug.
//
// Duplicate hrefs that resolve to the same normalized URL are probed once
// and reported at their first occurrence; fragment-only and non-HTTP
// hrefs are excluded entirely.
func (e *Engine) Audit(ctx context.Context, baseURL string, rawLinks []string) (*report.AuditReport, error) {
	start := time.Now()

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute http(s)", baseURL)
	}

	// outcomes is built in page order. Probeable links get a reserved slot
	// filled in after the batch; resolution failures are recorded inline.
	var outcomes []report.Outcome
	var toProbe []urlutil.ResolvedLink
	var probeSlots []int
	seen := mapset.NewSet[string]()

	for _, raw := range rawLinks {
		link, resolveErr := urlutil.Resolve(baseURL, raw)
		if resolveErr != nil {
			outcomes = append(outcomes, report.Outcome{
				URL:      raw,
				Raw:      raw,
				Status:   report.StatusUnresolved,
				Error:    resolveErr.Error(),
				Category: report.CategoryUnresolved,
			})
			continue
		}
		if link.SkipProbe {
			continue
		}
		if !seen.Add(link.URL) {
			continue
		}
		probeSlots = append(probeSlots, len(outcomes))
		outcomes = append(outcomes, report.Outcome{})
		toProbe = append(toProbe, link)
	}

	probed := e.pool.RunBatch(ctx, toProbe)
	for i, out := range probed {
		outcomes[probeSlots[i]] = out
	}

	rep := report.Aggregate(baseURL, outcomes)
	rep.Duration = time.Since(start)
	return rep, nil
}
