package probe

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pageaudit/linkaudit/report"
	"github.com/pageaudit/linkaudit/urlutil"
)

// Pool runs probes for a batch of resolved links with bounded parallelism.
// At most Concurrency probes are in flight at any moment; one slow or
// faulty link never blocks its siblings, and the batch completes only when
// every dispatched link has produced an outcome.
type Pool struct {
	cfg        Config
	prober     *Prober
	limiter    *Limiter
	robots     *RobotsGate
	progressCh chan<- ProgressEvent
}

// job pairs a link with its slot in the outcome slice, so workers can
// write results without a lock and the batch keeps page order for free.
type job struct {
	pos  int
	link urlutil.ResolvedLink
}

// New creates a Pool. The progress channel is optional; pass nil to
// disable progress events. Negative configuration values are caller
// programming errors and fail fast here, before any probing begins.
func New(cfg Config, progressCh chan<- ProgressEvent) (*Pool, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("probe config: %w", err)
	}
	cfg = cfg.withDefaults()

	p := &Pool{
		cfg:        cfg,
		prober:     NewProber(cfg),
		progressCh: progressCh,
	}
	if cfg.RateLimit > 0 {
		p.limiter = NewLimiter(cfg.RateLimit, cfg.TargetLatency)
	}
	if cfg.RespectRobots {
		p.robots = NewRobotsGate(cfg.Timeout)
	}
	return p, nil
}

// RunBatch probes every non-skipped link and returns exactly one outcome
// per dispatched link, in input order. Links tagged SkipProbe are not
// dispatched and do not appear in the result.
//
// Cancelling ctx abandons in-flight probes; links that never got a probe
// are drained to unresolved outcomes so the returned slice is still
// complete and a partial report can be aggregated from it.
func (p *Pool) RunBatch(ctx context.Context, links []urlutil.ResolvedLink) []report.Outcome {
	var work []job
	for _, link := range links {
		if link.SkipProbe {
			continue
		}
		work = append(work, job{pos: len(work), link: link})
	}
	if len(work) == 0 {
		return []report.Outcome{}
	}

	outcomes := make([]report.Outcome, len(work))

	jobs := make(chan job, len(work))
	for _, j := range work {
		jobs <- j
	}
	close(jobs)

	var checked, broken atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	workers := min(p.cfg.Concurrency, len(work))
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for j := range jobs {
				if groupCtx.Err() != nil {
					outcomes[j.pos] = p.abandonedOutcome(j.link, groupCtx.Err())
					continue
				}
				outcomes[j.pos] = p.runOne(groupCtx, j.link)
				p.emit(outcomes[j.pos], &checked, &broken)
			}
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes completion.
	_ = group.Wait()

	return outcomes
}

// runOne executes the per-link pipeline: rate limit, robots gate, probe.
func (p *Pool) runOne(ctx context.Context, link urlutil.ResolvedLink) report.Outcome {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return p.abandonedOutcome(link, err)
		}
	}

	if p.robots != nil {
		// Fail-open: a robots fetch error never blocks the probe.
		allowed, _ := p.robots.Allowed(ctx, link.URL, p.cfg.UserAgent)
		if !allowed {
			return report.Outcome{
				URL:      link.URL,
				Raw:      link.Raw,
				Status:   report.StatusUnresolved,
				Error:    "disallowed by robots.txt",
				Category: report.CategoryUnresolved,
			}
		}
	}

	out := p.prober.Probe(ctx, link.URL)
	out.Raw = link.Raw

	if p.limiter != nil && out.LatencyMs > 0 {
		p.limiter.ObserveLatency(time.Duration(out.LatencyMs) * time.Millisecond)
	}
	return out
}

// abandonedOutcome records a link the batch was cancelled under. It is
// unresolved, not broken: nothing was learned about the target.
func (p *Pool) abandonedOutcome(link urlutil.ResolvedLink, cause error) report.Outcome {
	return report.Outcome{
		URL:      link.URL,
		Raw:      link.Raw,
		Status:   report.StatusUnresolved,
		Error:    fmt.Sprintf("batch cancelled: %v", cause),
		Category: report.CategoryUnresolved,
	}
}

func (p *Pool) emit(out report.Outcome, checked, broken *atomic.Int64) {
	n := checked.Add(1)
	b := broken.Load()
	if out.Status == report.StatusBroken {
		b = broken.Add(1)
	}
	if p.progressCh == nil {
		return
	}
	evt := ProgressEvent{
		URL:        out.URL,
		Status:     out.Status,
		StatusCode: out.StatusCode,
		Checked:    int(n),
		Broken:     int(b),
	}
	// Drop events when the consumer falls behind; progress is advisory
	// and must never stall a worker.
	select {
	case p.progressCh <- evt:
	default:
	}
}
