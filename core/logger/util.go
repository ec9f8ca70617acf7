package logger

import (
	"strings"
	"time"
)

// Took is the rounded time elapsed since start.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to whole milliseconds.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// SummarizeStrings joins at most limit values and reports truncation.
func SummarizeStrings(values []string, limit int) (string, bool) {
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	if limit <= 0 {
		return "", true
	}
	return strings.Join(values[:limit], ", "), true
}
