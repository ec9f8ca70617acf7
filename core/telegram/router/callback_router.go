package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/datebot/core/telegram"
	"github.com/m3rciful/datebot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute routes every callback through the registry by key. Both
// telebot unique buttons and raw space separated tokens resolve to a key.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		start := time.Now()
		key, _ := callbacks.Parse(cb)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		h, ok := reg.GetCallback(key)
		if !ok || h == nil {
			h = reg.CallbackNotFound()
			extras = append(extras, slog.String("reason", "not_found"))
		}
		return handleWithSummary(c, name, start, func() error {
			if h == nil {
				return c.Respond()
			}
			return h(c)
		}, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
