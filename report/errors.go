package report

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Category labels why a link failed. It is diagnostic only; the
// broken/healthy verdict is carried by Status.
type Category string

const (
	CategoryTimeout           Category = "timeout"
	CategoryDNSFailure        Category = "dns_failure"
	CategoryConnectionRefused Category = "connection_refused"
	Category4xx               Category = "4xx"
	Category5xx               Category = "5xx"
	CategoryRedirectLoop      Category = "redirect_loop"
	CategoryUnresolved        Category = "unresolved"
	CategoryUnknown           Category = "unknown"
)

// Classify maps an error and HTTP status code to a Category. The
// redirectLoop flag is set by the prober when the redirect cap was hit;
// it takes priority because the underlying error is an uninformative
// url.Error wrapper.
func Classify(err error, statusCode int, redirectLoop bool) Category {
	if redirectLoop {
		return CategoryRedirectLoop
	}

	if statusCode >= 400 && statusCode <= 499 {
		return Category4xx
	}
	if statusCode >= 500 {
		return Category5xx
	}

	if err == nil {
		return CategoryUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CategoryDNSFailure
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return CategoryTimeout
		}
		if opErr.Op == "dial" && strings.Contains(opErr.Error(), "connection refused") {
			return CategoryConnectionRefused
		}
	}

	// url.Error flattens some transports; fall back to message sniffing.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "context deadline exceeded"), strings.Contains(msg, "Client.Timeout"):
		return CategoryTimeout
	case strings.Contains(msg, "no such host"):
		return CategoryDNSFailure
	case strings.Contains(msg, "connection refused"):
		return CategoryConnectionRefused
	}

	return CategoryUnknown
}

// FormatCategory returns a human-readable label for a category.
func FormatCategory(cat Category) string {
	switch cat {
	case CategoryTimeout:
		return "Timeouts"
	case CategoryDNSFailure:
		return "DNS Failures"
	case CategoryConnectionRefused:
		return "Connection Refused"
	case Category4xx:
		return "Client Errors (4xx)"
	case Category5xx:
		return "Server Errors (5xx)"
	case CategoryRedirectLoop:
		return "Redirect Loops"
	case CategoryUnresolved:
		return "Unresolved Links"
	default:
		return "Other Errors"
	}
}
