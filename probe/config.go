// Package probe checks the reachability of absolute URLs with a two-tier
// probing strategy and runs batches of checks under bounded concurrency.
package probe

import (
	"fmt"
	"time"
)

// Config holds probing configuration. Zero values mean "use the default";
// negative values are configuration errors and fail fast in New.
type Config struct {
	Timeout       time.Duration // per-request hard timeout (default 5s)
	MaxRedirects  int           // redirects followed per request (default 5)
	RetryFallback bool          // fall back to GET when HEAD is rejected or fails
	Concurrency   int           // worker pool size (default 10)
	RateLimit     int           // requests per second, 0 disables limiting
	TargetLatency time.Duration // adaptive limiter target RTT (default 500ms)
	RespectRobots bool          // consult robots.txt before probing each host
	UserAgent     string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		MaxRedirects:  5,
		RetryFallback: true,
		Concurrency:   10,
		TargetLatency: 500 * time.Millisecond,
		UserAgent:     "linkaudit/1.0 (+https://github.com/pageaudit/linkaudit)",
	}
}

// withDefaults fills unset fields. Callers distinguish "unset" (zero) from
// "invalid" (negative); validate rejects the latter before this runs.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = def.MaxRedirects
	}
	if c.Concurrency == 0 {
		c.Concurrency = def.Concurrency
	}
	if c.TargetLatency == 0 {
		c.TargetLatency = def.TargetLatency
	}
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	return c
}

// validate reports caller programming errors. These are the only fatal
// conditions in the engine; everything downstream degrades to an outcome.
func (c Config) validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("max redirects must be non-negative, got %d", c.MaxRedirects)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative, got %d", c.RateLimit)
	}
	return nil
}
