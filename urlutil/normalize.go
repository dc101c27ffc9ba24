package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Normalize rewrites a URL into a canonical form so that two spellings of
// the same target compare equal: scheme and host are lowercased, the
// fragment is dropped, and a trailing slash is trimmed from any path other
// than the root. Query parameters are preserved.
func Normalize(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("cannot normalize empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalize URL %q: %w", rawURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("URL must have both scheme and host")
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String(), nil
}
