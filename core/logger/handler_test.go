package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func render(ctx context.Context, t *testing.T, format logFormat, level slog.Level, event string, attrs ...slog.Attr) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{
		level:  slog.LevelDebug,
		writer: aw,
		format: format,
	})
	LogEvent(ctx, slog.New(h).With("component", "service.search"), level, event, attrs...)
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	ctx = WithStep(ctx, "ASK_AGE")

	line := render(ctx, t, formatKV, slog.LevelInfo, "wizard.search",
		slog.String("status", "OK"),
		slog.Int("count", 3),
	)
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=service.search", "event=wizard.search", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "step=ASK_AGE", "count=3"}
	if len(tokens) != len(expected) {
		t.Fatalf("tokens = %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-json")
	line := render(ctx, t, formatJSON, slog.LevelError, "session.save",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("backend", "redis"),
	)
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"service.search"`, `"event":"session.save"`, `"status":"fail"`, `"rid":"rid-json"`, `"backend":"redis"`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	raw := BuildRID(123, 456, 789)
	ctx := WithRID(context.Background(), raw)

	kv := render(ctx, t, formatKV, slog.LevelInfo, "rid.test")
	if !strings.Contains(kv, "rid="+CompactRID(raw)) || strings.Contains(kv, "rid_full=") {
		t.Fatalf("kv rid: %s", kv)
	}
	js := render(ctx, t, formatJSON, slog.LevelInfo, "rid.test")
	if !strings.Contains(js, `"rid":"3f.co.lx"`) || !strings.Contains(js, `"rid_full":"`+raw+`"`) {
		t.Fatalf("json rid: %s", js)
	}
	if !strings.Contains(js, `"ts_unix_nano"`) {
		t.Fatalf("json without ts_unix_nano: %s", js)
	}
}

func TestStructuredHandlerDurationAndEmpty(t *testing.T) {
	line := render(context.Background(), t, formatKV, slog.LevelDebug, "geo.reverse",
		slog.Duration("duration", 1499*time.Microsecond),
		slog.Duration("backoff", 2*time.Second),
		slog.String("city", ""),
		slog.String("outcome", "weird"),
	)
	if !strings.Contains(line, "duration_ms=1 ") || !strings.Contains(line, "backoff_ms=2000") {
		t.Fatalf("durations: %s", line)
	}
	if strings.Contains(line, "city=") || strings.Contains(line, "outcome=") {
		t.Fatalf("empty or unknown values kept: %s", line)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var got []bool
	for i := 0; i < 6; i++ {
		got = append(got, s.Allow())
	}
	want := []bool{true, false, false, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("allow sequence = %v", got)
		}
	}
	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := map[string][2]int{
		"1/10": {1, 10},
		"20":   {1, 20},
		"0":    {0, 0},
		"x/2":  {0, 0},
		"":     {0, 0},
	}
	for in, want := range cases {
		num, den := parseRatioSpec(in)
		if num != want[0] || den != want[1] {
			t.Fatalf("parseRatioSpec(%q) = %d/%d", in, num, den)
		}
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("hi\u200bthere\x07!", 7); got != "hithere" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
}
