package netutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", timeoutErr{}, true},
		{"dial", dial, true},
		{"wrapped url", &url.Error{Op: "Post", URL: "http://x", Err: dial}, true},
		{"cancelled", fmt.Errorf("send: %w", context.Canceled), false},
		{"api", errors.New("telegram: bad request (400)"), false},
	}
	for _, tc := range cases {
		if got := ShouldRetry(tc.err); got != tc.want {
			t.Fatalf("%s: ShouldRetry = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	other := errors.New("boom")
	cases := []struct {
		err    error
		status int
		want   string
	}{
		{nil, 0, ""},
		{other, http.StatusTooManyRequests, "rate_limited"},
		{other, http.StatusForbidden, "forbidden"},
		{other, http.StatusBadRequest, "bad_request"},
		{other, http.StatusBadGateway, "upstream_5xx"},
		{context.DeadlineExceeded, 0, "timeout"},
		{context.Canceled, 0, "cancelled"},
		{timeoutErr{}, 0, "network"},
		{errors.New("Bad Request: message is not modified"), 0, "not_modified"},
		{errors.New("Forbidden: bot was blocked by the user"), 0, "blocked"},
		{other, 0, "unknown"},
	}
	for _, tc := range cases {
		if got := Classify(tc.err, tc.status); got != tc.want {
			t.Fatalf("Classify(%v, %d) = %q, want %q", tc.err, tc.status, got, tc.want)
		}
	}
}

type scriptedTransport struct {
	errs  []error
	calls int
	body  []string
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.calls++
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		s.body = append(s.body, string(b))
	}
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("ok")), Request: req}, nil
}

func TestRetryTransportRetriesTransientErrors(t *testing.T) {
	base := &scriptedTransport{errs: []error{timeoutErr{}, timeoutErr{}}}
	rt := &RetryTransport{Base: base, MaxRetries: 2, Backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodPost, "http://api.local/send", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	resp.Body.Close()
	if base.calls != 3 {
		t.Fatalf("calls = %d, want 3", base.calls)
	}
	for i, b := range base.body {
		if b != "payload" {
			t.Fatalf("attempt %d body = %q", i+1, b)
		}
	}
}

func TestRetryTransportStopsOnPermanentErrors(t *testing.T) {
	permanent := errors.New("tls: bad certificate")
	base := &scriptedTransport{errs: []error{permanent}}
	rt := &RetryTransport{Base: base, MaxRetries: 3, Backoff: time.Millisecond}

	req, _ := http.NewRequest(http.MethodGet, "http://api.local/getMe", nil)
	if _, err := rt.RoundTrip(req); !errors.Is(err, permanent) {
		t.Fatalf("err = %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("calls = %d, want 1", base.calls)
	}
}

func TestRetryTransportGivesUp(t *testing.T) {
	base := &scriptedTransport{errs: []error{timeoutErr{}, timeoutErr{}, timeoutErr{}}}
	rt := &RetryTransport{Base: base, MaxRetries: 1, Backoff: time.Millisecond}

	req, _ := http.NewRequest(http.MethodGet, "http://api.local/getMe", nil)
	if _, err := rt.RoundTrip(req); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if base.calls != 2 {
		t.Fatalf("calls = %d, want 2", base.calls)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(ClientOptions{Retries: -1})
	if c.Timeout != 30*time.Second {
		t.Fatalf("timeout = %s", c.Timeout)
	}
	rt, ok := c.Transport.(*RetryTransport)
	if !ok || rt.MaxRetries != 0 || rt.Backoff != 2*time.Second {
		t.Fatalf("transport = %#v", c.Transport)
	}
}
