package netutil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ShouldRetry reports whether a network error is worth retrying.
// Only transient dial and timeout failures qualify; API errors never do.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() || opErr.Op == "dial" {
			return true
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return ShouldRetry(urlErr.Err)
		}
	}

	return false
}

// Classify maps an outbound failure to a short error code for logs.
// status is the HTTP status when known, zero otherwise.
func Classify(err error, status int) string {
	switch {
	case err == nil:
		return ""
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusBadRequest:
		return "bad_request"
	case status >= 500:
		return "upstream_5xx"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case ShouldRetry(err):
		return "network"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "message is not modified"):
		return "not_modified"
	case strings.Contains(msg, "blocked by the user"):
		return "blocked"
	}
	return "unknown"
}
