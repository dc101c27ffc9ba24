package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pageaudit/linkaudit/report"
	"github.com/pageaudit/linkaudit/urlutil"
)

func mustNewPool(t *testing.T, cfg Config, progressCh chan<- ProgressEvent) *Pool {
	t.Helper()
	p, err := New(cfg, progressCh)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return p
}

func resolvedLinks(urls ...string) []urlutil.ResolvedLink {
	links := make([]urlutil.ResolvedLink, len(urls))
	for i, u := range urls {
		links[i] = urlutil.ResolvedLink{URL: u, Raw: u}
	}
	return links
}

func TestNew_RejectsNegativeConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative concurrency", Config{Concurrency: -1}},
		{"negative timeout", Config{Timeout: -time.Second}},
		{"negative redirects", Config{MaxRedirects: -1}},
		{"negative rate limit", Config{RateLimit: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, nil); err == nil {
				t.Error("expected configuration error, got nil")
			}
		})
	}
}

// Every dispatched link yields exactly one outcome, in input order.
func TestRunBatch_Completeness(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	links := resolvedLinks(
		server.URL+"/ok",
		server.URL+"/missing",
		server.URL+"/ok?n=2",
	)

	pool := mustNewPool(t, Config{Concurrency: 2, RetryFallback: true}, nil)
	outcomes := pool.RunBatch(context.Background(), links)

	if len(outcomes) != len(links) {
		t.Fatalf("got %d outcomes for %d links", len(outcomes), len(links))
	}
	for i, out := range outcomes {
		if out.URL != links[i].URL {
			t.Errorf("outcome %d is %s, want %s (input order)", i, out.URL, links[i].URL)
		}
	}
	if outcomes[1].Status != report.StatusBroken {
		t.Errorf("outcome for /missing = %v, want broken", outcomes[1].Status)
	}
}

func TestRunBatch_SkipsSkipProbeLinks(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	links := []urlutil.ResolvedLink{
		{URL: server.URL + "/a", Raw: "/a"},
		{URL: "mailto:x@example.com", Raw: "mailto:x@example.com", SkipProbe: true},
		{URL: server.URL + "/b", Raw: "/b"},
	}

	pool := mustNewPool(t, Config{Concurrency: 2}, nil)
	outcomes := pool.RunBatch(context.Background(), links)

	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2 (skip excluded)", len(outcomes))
	}
	for _, out := range outcomes {
		if strings.HasPrefix(out.URL, "mailto:") {
			t.Error("skip-tagged link was probed")
		}
	}
	if hits.Load() > 4 {
		t.Errorf("server saw %d requests, expected at most 4", hits.Load())
	}
}

func TestRunBatch_EmptyAndAllSkipped(t *testing.T) {
	pool := mustNewPool(t, Config{}, nil)

	if got := pool.RunBatch(context.Background(), nil); len(got) != 0 {
		t.Errorf("nil input: got %d outcomes, want 0", len(got))
	}

	skipped := []urlutil.ResolvedLink{{URL: "mailto:a@b.c", SkipProbe: true}}
	if got := pool.RunBatch(context.Background(), skipped); len(got) != 0 {
		t.Errorf("all-skipped input: got %d outcomes, want 0", len(got))
	}
}

// With concurrency K and N > K slow links, no more than K probes may be in
// flight at once.
func TestRunBatch_BoundedConcurrency(t *testing.T) {
	const limit = 3
	var inFlight, peak atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if now <= old || peak.CompareAndSwap(old, now) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var urls []string
	for i := 0; i < 12; i++ {
		urls = append(urls, fmt.Sprintf("%s/page-%d", server.URL, i))
	}

	pool := mustNewPool(t, Config{Concurrency: limit}, nil)
	outcomes := pool.RunBatch(context.Background(), resolvedLinks(urls...))

	if len(outcomes) != 12 {
		t.Fatalf("got %d outcomes, want 12", len(outcomes))
	}
	if peak.Load() > limit {
		t.Errorf("peak concurrency %d exceeded limit %d", peak.Load(), limit)
	}
}

// One unresponsive link must not stall the rest of the batch beyond its
// own timeout.
func TestRunBatch_SlowLinkDoesNotBlockSiblings(t *testing.T) {
	block := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/hang", func(w http.ResponseWriter, r *http.Request) {
		<-block
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	defer close(block)

	links := resolvedLinks(server.URL+"/hang", server.URL+"/a", server.URL+"/b")

	cfg := Config{Concurrency: 3, Timeout: 200 * time.Millisecond, RetryFallback: true}
	pool := mustNewPool(t, cfg, nil)

	start := time.Now()
	outcomes := pool.RunBatch(context.Background(), links)
	elapsed := time.Since(start)

	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	if outcomes[0].Status != report.StatusBroken || outcomes[0].Error != "timeout" {
		t.Errorf("hanging link: status=%v error=%q, want broken/timeout", outcomes[0].Status, outcomes[0].Error)
	}
	for i := 1; i < 3; i++ {
		if outcomes[i].Status != report.StatusHealthy {
			t.Errorf("sibling %d: status=%v, want healthy", i, outcomes[i].Status)
		}
	}
	if elapsed > 2*time.Second {
		t.Errorf("batch took %v, want bounded by per-probe timeout", elapsed)
	}
}

// Cancelling the batch abandons in-flight probes but still returns one
// outcome per link so a partial report can be aggregated.
func TestRunBatch_Cancellation(t *testing.T) {
	release := make(chan struct{})
	var first sync.Once
	started := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first.Do(func() { close(started) })
		<-release
	}))
	defer server.Close()
	defer close(release)

	var urls []string
	for i := 0; i < 8; i++ {
		urls = append(urls, fmt.Sprintf("%s/p%d", server.URL, i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	cfg := Config{Concurrency: 2, Timeout: 5 * time.Second}
	pool := mustNewPool(t, cfg, nil)
	outcomes := pool.RunBatch(ctx, resolvedLinks(urls...))

	if len(outcomes) != 8 {
		t.Fatalf("got %d outcomes, want 8 even under cancellation", len(outcomes))
	}
	var unresolved int
	for _, out := range outcomes {
		if out.Status == report.StatusUnresolved {
			unresolved++
		}
	}
	if unresolved == 0 {
		t.Error("expected abandoned links to be reported unresolved")
	}
}

func TestRunBatch_EmitsProgressEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/bad") {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	links := resolvedLinks(server.URL+"/ok", server.URL+"/bad")
	progressCh := make(chan ProgressEvent, len(links))

	pool := mustNewPool(t, Config{Concurrency: 1}, progressCh)
	pool.RunBatch(context.Background(), links)
	close(progressCh)

	var events []ProgressEvent
	for evt := range progressCh {
		events = append(events, evt)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	last := events[len(events)-1]
	if last.Checked != 2 {
		t.Errorf("final Checked = %d, want 2", last.Checked)
	}
	if last.Broken != 1 {
		t.Errorf("final Broken = %d, want 1", last.Broken)
	}
}
