// Package main provides the linkaudit CLI entrypoint: fetch one page,
// extract its outbound links, and audit them for broken targets.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pageaudit/linkaudit/audit"
	"github.com/pageaudit/linkaudit/extract"
	"github.com/pageaudit/linkaudit/probe"
	"github.com/pageaudit/linkaudit/report"
	"github.com/pageaudit/linkaudit/tui"
)

func main() {
	concurrency := flag.Int("concurrency", 10, "number of concurrent probes")
	timeout := flag.Duration("timeout", 5*time.Second, "per-probe timeout")
	maxRedirects := flag.Int("max-redirects", 5, "redirects followed per probe")
	noFallback := flag.Bool("no-fallback", false, "disable the GET fallback probe")
	rateLimit := flag.Int("rate-limit", 0, "probes per second (0 = unlimited)")
	robots := flag.Bool("robots", false, "respect robots.txt for probed hosts")
	userAgent := flag.String("user-agent", "linkaudit/1.0 (+https://github.com/pageaudit/linkaudit)", "user agent string")
	plain := flag.Bool("plain", false, "plain text output instead of the TUI")
	jsonPath := flag.String("json", "", "write the full report as JSON to this file")
	csvPath := flag.String("csv", "", "write broken links as CSV to this file")

	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: linkaudit [flags] <url>")
		fmt.Fprintln(os.Stderr, "Flags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	pageURL := flag.Arg(0)
	parsedURL, err := url.Parse(pageURL)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		fmt.Fprintf(os.Stderr, "Invalid URL: %s\nURL must start with http:// or https://\n", pageURL)
		os.Exit(1)
	}

	cfg := probe.Config{
		Timeout:       *timeout,
		MaxRedirects:  *maxRedirects,
		RetryFallback: !*noFallback,
		Concurrency:   *concurrency,
		RateLimit:     *rateLimit,
		RespectRobots: *robots,
		UserAgent:     *userAgent,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rep *report.AuditReport
	if *plain {
		rep, err = runPlain(ctx, cfg, pageURL)
	} else {
		rep, err = runTUI(ctx, cancel, cfg, pageURL)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if rep == nil {
		os.Exit(1)
	}

	if err := writeExports(rep, *jsonPath, *csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(rep.BrokenLinks) > 0 {
		os.Exit(1)
	}
}

// newRunner builds the audit closure: fetch the page, extract hrefs, run
// the engine. The engine only ever sees raw link strings.
func newRunner(cfg probe.Config, pageURL string, progressCh chan<- probe.ProgressEvent) (tui.Runner, error) {
	engine, err := audit.New(cfg, progressCh)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) (*report.AuditReport, error) {
		raws, err := fetchLinks(ctx, pageURL, cfg)
		if err != nil {
			return nil, err
		}
		return engine.Audit(ctx, pageURL, raws)
	}, nil
}

// fetchLinks downloads the page and extracts its raw anchor targets.
func fetchLinks(ctx context.Context, pageURL string, cfg probe.Config) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch page %s: status %d", pageURL, resp.StatusCode)
	}

	links, err := extract.Links(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("extract links from %s: %w", pageURL, err)
	}
	return extract.Hrefs(links), nil
}

func runPlain(ctx context.Context, cfg probe.Config, pageURL string) (*report.AuditReport, error) {
	run, err := newRunner(cfg, pageURL, nil)
	if err != nil {
		return nil, err
	}
	rep, err := run(ctx)
	if err != nil {
		return nil, err
	}
	report.PrintReport(os.Stdout, rep)
	return rep, nil
}

func runTUI(ctx context.Context, cancel context.CancelFunc, cfg probe.Config, pageURL string) (*report.AuditReport, error) {
	progressCh := make(chan probe.ProgressEvent, 100)
	run, err := newRunner(cfg, pageURL, progressCh)
	if err != nil {
		return nil, err
	}

	model := tui.NewModel(ctx, cancel, run, progressCh)
	program := tea.NewProgram(model)

	finalModel, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("run tui: %w", err)
	}
	return finalModel.(tui.Model).Report(), nil
}

func writeExports(rep *report.AuditReport, jsonPath, csvPath string) error {
	if jsonPath != "" {
		if err := writeFile(jsonPath, func(f *os.File) error {
			return report.WriteJSON(f, rep)
		}); err != nil {
			return err
		}
	}
	if csvPath != "" {
		if err := writeFile(csvPath, func(f *os.File) error {
			return report.WriteCSV(f, rep.BrokenLinks)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
