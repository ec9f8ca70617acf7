package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/datebot/core/logger"
	"github.com/m3rciful/datebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/datebot/core/telegram/helpers"

	"github.com/maypok86/otter"
	tele "gopkg.in/telebot.v4"
)

// recentUpdates remembers update ids for a few seconds so an update passing
// through several wrapped branches is logged once.
var recentUpdates = sync.OnceValue(func() *otter.Cache[int, struct{}] {
	c, err := otter.MustBuilder[int, struct{}](4096).WithTTL(10 * time.Second).Build()
	if err != nil {
		return nil
	}
	return &c
})

func alreadyLogged(updateID int) bool {
	cache := recentUpdates()
	if cache == nil {
		return false
	}
	if _, ok := cache.Get(updateID); ok {
		return true
	}
	cache.Set(updateID, struct{}{})
	return false
}

// LoggerMiddleware sets the correlation id of the update and logs one
// receipt line per update at debug level.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		userID, chatID := tghelpers.UserID(c), tghelpers.ChatID(c)

		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())
		ctx := tghelpers.BuildContext(c)

		if !logger.ShouldSampleDebug() || alreadyLogged(upd.ID) {
			return next(c)
		}

		attrs := []slog.Attr{slog.String("status", "ok")}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if user := c.Sender(); user != nil {
			if user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			if user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
		}
		switch {
		case upd.Callback != nil:
			key, payload := callbacks.Parse(upd.Callback)
			if key != "" {
				attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
			}
			if payload != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
			}
		case upd.Message != nil:
			msg := upd.Message
			switch {
			case msg.Photo != nil:
				attrs = append(attrs, slog.String("kind", "photo"))
			case msg.Location != nil:
				attrs = append(attrs, slog.String("kind", "location"))
			case msg.Text != "":
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(msg.Text, 256)))
			}
		}
		logger.Debug(ctx, "tg", "update.received", attrs...)
		return next(c)
	}
}
