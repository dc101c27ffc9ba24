package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// robotsEntry caches one host's parsed robots.txt. A nil data field means
// allow-all (missing file, server error, or unreachable host).
type robotsEntry struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

// RobotsGate answers whether a URL may be probed under its host's
// robots.txt. Rules are cached per host with a TTL, and every failure mode
// fails open: politeness should never make a reachable link unreachable.
type RobotsGate struct {
	client   *http.Client
	cache    sync.Map // host -> *robotsEntry
	cacheTTL time.Duration
}

// NewRobotsGate creates a gate whose robots.txt fetches use the given
// timeout.
func NewRobotsGate(timeout time.Duration) *RobotsGate {
	return &RobotsGate{
		client:   &http.Client{Timeout: timeout},
		cacheTTL: time.Hour,
	}
}

// Allowed reports whether userAgent may fetch rawURL. The returned error is
// informational; when it is non-nil the verdict is always true.
func (g *RobotsGate) Allowed(ctx context.Context, rawURL, userAgent string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true, fmt.Errorf("parse URL: %w", err)
	}
	host := parsed.Host
	if host == "" {
		return true, nil
	}

	if cached, ok := g.cache.Load(host); ok {
		entry := cached.(*robotsEntry)
		if time.Since(entry.fetchedAt) < g.cacheTTL {
			if entry.data == nil {
				return true, nil
			}
			return entry.data.TestAgent(parsed.Path, userAgent), nil
		}
	}

	data, err := g.fetch(ctx, parsed.Scheme, host)
	g.cache.Store(host, &robotsEntry{data: data, fetchedAt: time.Now()})
	if err != nil {
		return true, err
	}
	if data == nil {
		return true, nil
	}
	return data.TestAgent(parsed.Path, userAgent), nil
}

// fetch retrieves and parses a host's robots.txt. A nil result with nil
// error means the host has no effective rules.
func (g *RobotsGate) fetch(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, error) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build robots.txt request for %s: %w", host, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt for %s: %w", host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode >= 500 {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read robots.txt for %s: %w", host, err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt for %s: %w", host, err)
	}
	return data, nil
}
