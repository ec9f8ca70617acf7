package telegram

import (
	"net/http"
	"time"

	"github.com/m3rciful/datebot/core/telegram/netutil"
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls. The
// client timeout must exceed the long-poll timeout.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	timeout := 30 * time.Second
	if pollTimeout+10*time.Second > timeout {
		timeout = pollTimeout + 10*time.Second
	}
	return netutil.NewClient(netutil.ClientOptions{
		Timeout:         timeout,
		ResponseTimeout: pollTimeout + 5*time.Second,
		Retries:         3,
		Backoff:         2 * time.Second,
	})
}
