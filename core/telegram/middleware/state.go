package middleware

import (
	"log/slog"

	"github.com/m3rciful/datebot/core/logger"
	tghelpers "github.com/m3rciful/datebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// WizardGetter reports the wizard the sender of c is running, or "".
type WizardGetter interface {
	ActiveWizard(c tele.Context) string
}

// InWizard drops updates from users who are not running the given wizard.
// Stale keyboards from finished conversations end up here.
func InWizard(mgr WizardGetter, wizard string) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			current := mgr.ActiveWizard(c)
			if current == wizard {
				return next(c)
			}
			logger.Debug(tghelpers.BuildContext(c), "tg", "wizard.skip",
				slog.String("wizard", current),
				slog.String("expected", wizard),
			)
			if c.Callback() != nil {
				return c.Respond()
			}
			return nil
		}
	}
}
