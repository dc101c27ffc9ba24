package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pageaudit/linkaudit/report"
)

// errTooManyRedirects is returned by the redirect policy when a chain
// exceeds the configured cap. http.Client wraps it in a *url.Error, so
// detection goes through errors.Is.
var errTooManyRedirects = errors.New("too many redirects")

// Prober determines the reachability of one absolute URL. Tier 1 is a
// header-only HEAD request; when that fails at the transport level or the
// server rejects the method (405, 501), tier 2 retries once with a full
// GET. Many servers reject HEAD while being perfectly reachable, so a
// single-tier prober would over-report broken links.
//
// A Prober is safe for concurrent use; the underlying HTTP client shares
// one connection pool across all workers.
type Prober struct {
	client *http.Client
	cfg    Config
}

// NewProber returns a Prober with the given configuration. The client
// follows up to cfg.MaxRedirects redirects and enforces no timeout of its
// own; per-request deadlines come from the probe context.
func NewProber(cfg Config) *Prober {
	maxRedirects := cfg.MaxRedirects
	client := &http.Client{
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}
	return &Prober{client: client, cfg: cfg}
}

// Probe checks a single URL and returns its outcome. It never returns an
// error: every failure mode is folded into the outcome so that one bad
// link cannot abort a batch.
func (p *Prober) Probe(ctx context.Context, url string) report.Outcome {
	status, latency, err := p.attempt(ctx, http.MethodHead, url)

	if err == nil && !rejectsHead(status) {
		return p.classify(url, report.MethodHead, status, latency, nil)
	}

	if !p.cfg.RetryFallback {
		if err != nil {
			return p.transportOutcome(url, report.MethodHead, latency, err)
		}
		return p.classify(url, report.MethodHead, status, latency, nil)
	}

	// Tier 2: full-body GET, same redirect policy, same classification.
	status, latency, err = p.attempt(ctx, http.MethodGet, url)
	if err != nil {
		return p.transportOutcome(url, report.MethodGet, latency, err)
	}
	return p.classify(url, report.MethodGet, status, latency, nil)
}

// attempt issues one request and reports the status code plus wall-clock
// time from dispatch to response headers.
func (p *Prober) attempt(ctx context.Context, method, url string) (int, time.Duration, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	start := time.Now()
	resp, err := p.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, latency, err
	}

	// Drain a little so the connection can be reused, then discard.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()

	return resp.StatusCode, latency, nil
}

// rejectsHead reports whether a status code means the server refused the
// header-only method rather than answering for the resource.
func rejectsHead(status int) bool {
	return status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented
}

// classify builds an outcome from a completed response.
func (p *Prober) classify(url string, method report.Method, status int, latency time.Duration, err error) report.Outcome {
	out := report.Outcome{
		URL:        url,
		StatusCode: status,
		LatencyMs:  latency.Milliseconds(),
		Method:     method,
	}
	if status >= 400 {
		out.Status = report.StatusBroken
		out.Category = report.Classify(err, status, false)
	} else {
		out.Status = report.StatusHealthy
	}
	return out
}

// transportOutcome builds the outcome for a request that never produced a
// status code. Unreachable means broken: inability to determine
// resolvability is only an unresolved outcome at the URL-resolution stage.
// The one exception is batch cancellation, where the probe was abandoned
// and nothing was learned about the target.
func (p *Prober) transportOutcome(url string, method report.Method, latency time.Duration, err error) report.Outcome {
	if errors.Is(err, context.Canceled) {
		return report.Outcome{
			URL:      url,
			Status:   report.StatusUnresolved,
			Method:   method,
			Error:    fmt.Sprintf("batch cancelled: %v", context.Canceled),
			Category: report.CategoryUnresolved,
		}
	}

	redirectLoop := errors.Is(err, errTooManyRedirects)
	category := report.Classify(err, 0, redirectLoop)

	msg := err.Error()
	if category == report.CategoryTimeout {
		msg = "timeout"
	}

	return report.Outcome{
		URL:       url,
		Status:    report.StatusBroken,
		LatencyMs: latency.Milliseconds(),
		Method:    method,
		Error:     msg,
		Category:  category,
	}
}
