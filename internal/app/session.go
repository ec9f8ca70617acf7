package app

import (
	"log/slog"

	"github.com/m3rciful/datebot/core/logger"
	tghelpers "github.com/m3rciful/datebot/core/telegram/helpers"
	"github.com/m3rciful/datebot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// persist stores flow under wizard, or drops the session once the wizard
// reached a terminal step.
func (a *App) persist(c tele.Context, s *state.Session, wizard string, flow any, terminal bool) error {
	ctx := tghelpers.BuildContext(c)
	store := a.sessions.Store()
	uid := tghelpers.UserID(c)
	if terminal {
		return store.Clear(ctx, uid)
	}
	if s == nil {
		s = &state.Session{}
	}
	if err := state.Encode(s, wizard, flow); err != nil {
		return err
	}
	return store.Save(ctx, uid, s)
}

// restart drops a session whose flow cannot be decoded.
func (a *App) restart(c tele.Context, err error) error {
	ctx := tghelpers.BuildContext(c)
	logger.Warn(ctx, component, "session.reset",
		slog.String("err", err.Error()),
	)
	if cerr := a.sessions.Store().Clear(ctx, tghelpers.UserID(c)); cerr != nil {
		return a.fail(c, cerr)
	}
	return a.fail(c, err)
}

func (a *App) onCancel(c tele.Context) error {
	s, err := state.Load(c, a.sessions.Store())
	if err != nil {
		return a.fail(c, err)
	}
	if !s.Active() {
		return tghelpers.SendText(c, a.t("messages", "nothing_to_cancel"), keyboardRemoved())
	}
	ctx := tghelpers.BuildContext(c)
	if err := a.sessions.Store().Clear(ctx, tghelpers.UserID(c)); err != nil {
		return a.fail(c, err)
	}
	logger.Info(ctx, component, "wizard.cancel", slog.String("wizard", s.Wizard))
	return tghelpers.SendText(c, a.t("messages", "cancelled"), keyboardRemoved())
}
