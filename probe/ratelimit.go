package probe

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// minRate keeps the limiter from throttling a batch to a crawl after a
	// few slow responses.
	minRate = 1.0

	// maxRate caps how aggressive the limiter may become.
	maxRate = 100.0

	// latencyAlpha is the EMA smoothing factor: ~20% weight to the newest
	// observation so a single outlier cannot swing the rate.
	latencyAlpha = 0.2

	// recoveryFactor grows the rate 10% per observation faster than target.
	recoveryFactor = 1.1

	// backoffFloor bounds how far the rate may drop in one step.
	backoffFloor = 0.5
)

// Limiter paces probe dispatch and adapts the pace to the origin's observed
// latency: slower responses than the target shrink the rate, faster ones
// grow it back. Latency is tracked as an exponential moving average.
type Limiter struct {
	limiter *rate.Limiter
	target  time.Duration

	mu      sync.Mutex
	ema     time.Duration
	current float64
}

// NewLimiter creates a Limiter starting at rps requests per second with the
// given target latency.
func NewLimiter(rps int, target time.Duration) *Limiter {
	start := clampRate(float64(rps))
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(start), int(math.Ceil(start))),
		target:  target,
		ema:     target,
		current: start,
	}
}

// Wait blocks until the limiter admits the next request or ctx is
// cancelled. Safe for concurrent use.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// ObserveLatency folds one response time into the moving average and
// adjusts the rate accordingly.
func (l *Limiter) ObserveLatency(rtt time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ema = time.Duration(latencyAlpha*float64(rtt) + (1-latencyAlpha)*float64(l.ema))

	ratio := float64(l.target) / float64(l.ema)
	var next float64
	if ratio < 1 {
		next = math.Max(l.current*ratio, l.current*backoffFloor)
	} else {
		next = l.current * recoveryFactor
	}
	next = clampRate(next)

	if math.Abs(next-l.current) > 0.1 {
		l.current = next
		l.limiter.SetLimit(rate.Limit(next))
		l.limiter.SetBurst(int(math.Ceil(next)))
	}
}

// CurrentRate returns the current limit in requests per second.
func (l *Limiter) CurrentRate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

func clampRate(rps float64) float64 {
	return math.Min(math.Max(rps, minRate), maxRate)
}
