package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

var knownOutcome = map[string]bool{
	"ok":        true,
	"fail":      true,
	"warn":      true,
	"cancelled": true,
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

// defaultKeyOrder fixes the leading keys of every line; the rest follow sorted.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"handler",
	"wizard",
	"step",
	"op",
	"cb_key",
	"outcome",
	"duration_ms",
	"run_id",
	"sources",
	"source_id",
	"filter",
	"post_id",
	"match_id",
	"count",
	"payload",
	"backend",
	"username",
	"mode",
	"listen",
	"public_url",
	"http_code",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"retryable",
	"attempts",
	"backoff_ms",
}
