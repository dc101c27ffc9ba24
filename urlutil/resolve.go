// Package urlutil resolves raw page hrefs into absolute, comparable URLs.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ResolvedLink is an absolute URL derived from a raw href and the base URL
// of the page it was found on. Once created it is never mutated.
type ResolvedLink struct {
	URL       string // absolute, normalized URL
	Raw       string // the href exactly as it appeared on the page
	SkipProbe bool   // fragment-only or non-HTTP scheme; excluded from probing
}

// ErrEmptyHref is returned for hrefs that contain no target at all.
var ErrEmptyHref = errors.New("empty href")

// Resolve turns a raw href into a ResolvedLink relative to base. The base
// must itself be an absolute http(s) URL. The raw href may be absolute,
// scheme-relative, path-relative, or fragment-only.
//
// Fragment-only hrefs ("#section") and non-HTTP schemes (mailto:, tel:,
// javascript:) resolve successfully but are tagged SkipProbe; they point at
// something, just nothing a reachability probe can say anything about.
//
// A raw href that cannot be parsed in any form returns an error; callers
// record the link as unresolved rather than aborting the batch.
func Resolve(base, raw string) (ResolvedLink, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ResolvedLink{}, fmt.Errorf("parse base URL %q: %w", base, err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" || baseURL.Host == "" {
		return ResolvedLink{}, fmt.Errorf("base URL %q must be absolute http(s)", base)
	}

	if raw == "" {
		return ResolvedLink{}, ErrEmptyHref
	}

	if strings.HasPrefix(raw, "#") {
		return ResolvedLink{URL: base, Raw: raw, SkipProbe: true}, nil
	}

	refURL, err := url.Parse(raw)
	if err != nil {
		return ResolvedLink{}, fmt.Errorf("parse href %q: %w", raw, err)
	}

	resolved := baseURL.ResolveReference(refURL)

	scheme := strings.ToLower(resolved.Scheme)
	if scheme != "http" && scheme != "https" {
		return ResolvedLink{URL: resolved.String(), Raw: raw, SkipProbe: true}, nil
	}
	if resolved.Host == "" {
		return ResolvedLink{}, fmt.Errorf("href %q resolves to no host", raw)
	}

	normalized, err := Normalize(resolved.String())
	if err != nil {
		return ResolvedLink{}, fmt.Errorf("normalize resolved href %q: %w", raw, err)
	}

	return ResolvedLink{URL: normalized, Raw: raw}, nil
}
