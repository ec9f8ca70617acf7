package logger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeLayout = "2006-01-02T15:04:05.000Z07:00"
)

var errNoWriter = errors.New("logger: writer not initialized")

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as ordered kv or json lines.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errNoWriter
	}
	isJSON := h.cfg.format == formatJSON

	ts := r.Time.UTC()
	fields := fieldSet{
		"ts":    ts.Truncate(time.Millisecond).Format(timeLayout),
		"level": normalizeLevel(r.Level.String()),
	}
	if isJSON {
		fields["ts_unix_nano"] = ts.UnixNano()
	}
	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		fields.collect(prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		fields.collect(prefix, a)
		return true
	})
	fields.fromMeta(MetaFrom(ctx))

	if rid := fields.str("rid"); rid != "" {
		if compact := CompactRID(rid); compact != rid {
			if isJSON {
				fields.setDefault("rid_full", rid)
			}
			fields["rid"] = compact
		}
	}
	if fields.str("event") == "" {
		fields["event"] = cmpOr(r.Message, "unknown")
	}
	if fields.str("component") == "" {
		fields["component"] = "app"
	}
	fields.normalize()

	var line []byte
	if isJSON {
		var err error
		if line, err = fields.json(h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = fields.kv(h.cfg.keyOrder)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clip(h.attrs), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(slices.Clip(h.groups), name)
	return &clone
}

func cmpOr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// fieldSet is the flattened view of one record.
type fieldSet map[string]any

func (f fieldSet) collect(prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" {
		key = strings.Trim(prefix+"."+key, ".")
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			f.collect(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, v, ok := flatten(key, a.Value.Resolve()); ok {
		f[k] = v
	}
}

func (f fieldSet) setDefault(key string, v any) {
	if _, ok := f[key]; !ok {
		f[key] = v
	}
}

func (f fieldSet) str(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (f fieldSet) fromMeta(m Meta) {
	if m.RID != "" {
		f.setDefault("rid", m.RID)
	}
	if m.UpdateID != 0 {
		f.setDefault("update_id", int64(m.UpdateID))
	}
	if m.UserID != 0 {
		f.setDefault("user_id", m.UserID)
	}
	if m.ChatID != 0 {
		f.setDefault("chat_id", m.ChatID)
	}
	if m.Handler != "" {
		f.setDefault("handler", m.Handler)
	}
	if m.Step != "" {
		f.setDefault("step", m.Step)
	}
}

// normalize maps enumerated keys and drops empty values.
func (f fieldSet) normalize() {
	f["level"] = normalizeLevel(f.str("level"))
	if s := strings.ToLower(f.str("status")); s != "" {
		f["status"] = s
	}
	if o := strings.ToLower(f.str("outcome")); o != "" {
		if knownOutcome[o] {
			f["outcome"] = o
		} else {
			delete(f, "outcome")
		}
	}
	for k, v := range f {
		if s, ok := v.(string); ok && s == "" {
			delete(f, k)
		}
		if v == nil {
			delete(f, k)
		}
	}
}

// keys returns the ordered keys followed by the remaining ones sorted.
func (f fieldSet) keys(order []string) []string {
	out := make([]string, 0, len(f))
	seen := make(map[string]bool, len(f))
	for _, k := range order {
		if _, ok := f[k]; ok && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range f {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func (f fieldSet) json(order []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range f.keys(order) {
		data, err := json.Marshal(f[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.Write(data)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (f fieldSet) kv(order []string) []byte {
	var b strings.Builder
	for i, k := range f.keys(order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		s := fmt.Sprint(f[k])
		if strings.IndexFunc(s, needsQuote) >= 0 {
			s = strconv.Quote(s)
		}
		b.WriteString(s)
	}
	return []byte(b.String())
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}

func flatten(key string, val slog.Value) (string, any, bool) {
	switch val.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(val.String()), true
	case slog.KindBool:
		return key, val.Bool(), true
	case slog.KindInt64:
		return key, val.Int64(), true
	case slog.KindUint64:
		if u := val.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, val.Uint64(), true
	case slog.KindFloat64:
		return key, val.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(val.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, val.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := val.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case time.Duration:
		return durationKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

// durationKey renames duration attributes so the unit is part of the key.
func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	}
	return key + "_ms"
}
