package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Parse splits callback data into a routing key and a payload.
//
// Two encodings reach OnCallback: telebot's "\f<unique>|<payload>" for
// buttons built with an Unique, and raw "<key> <args...>" tokens such as
// checklist buttons. The raw form keeps the whole data as payload so the
// owner can decode it.
func Parse(cb *tele.Callback) (key, payload string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimSpace(cb.Data)
	if rest, ok := strings.CutPrefix(raw, "\f"); ok {
		key, payload, _ = strings.Cut(rest, "|")
		return strings.TrimSpace(key), payload
	}
	key, _, _ = strings.Cut(raw, " ")
	return key, raw
}

// Key returns the routing key of the callback in c.
func Key(c tele.Context) string {
	k, _ := Parse(c.Callback())
	return k
}

// Payload returns the payload of the callback in c.
func Payload(c tele.Context) string {
	_, p := Parse(c.Callback())
	return p
}
