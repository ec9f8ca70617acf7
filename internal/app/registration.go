package app

import (
	"log/slog"

	"github.com/m3rciful/datebot/core/logger"
	tghelpers "github.com/m3rciful/datebot/core/telegram/helpers"
	"github.com/m3rciful/datebot/core/telegram/state"
	"github.com/m3rciful/datebot/internal/forms"
	"github.com/m3rciful/datebot/internal/wizard"

	tele "gopkg.in/telebot.v4"
)

// onStart shows the profile of registered users and opens the registration
// wizard for everybody else.
func (a *App) onStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.UserID(c)
	card, err := a.profiles.Get(ctx, uid)
	if err == nil {
		if err := tghelpers.SendText(c, a.t("messages", "welcome_back"), keyboardRemoved()); err != nil {
			return err
		}
		return a.sendCard(c, card, nil)
	}
	if !isNotFound(err) {
		return a.fail(c, err)
	}

	flow, out := a.registration.Start(uid, a.cfg.Forms.BackNavigation)
	if err := a.persist(c, &state.Session{}, wizardRegistration, flow, false); err != nil {
		return a.fail(c, err)
	}
	logger.Info(ctx, component, "wizard.start", slog.String("wizard", wizardRegistration))
	return a.renderRegistration(c, flow, out)
}

// registrationTurn answers one message of a running registration.
func (a *App) registrationTurn(c tele.Context) error {
	s := state.Current(c)
	flow, err := state.Decode[wizard.RegistrationFlow](s)
	if err != nil {
		return a.restart(c, err)
	}
	ctx := tghelpers.WithStep(c, string(flow.Step))

	out, err := a.registration.Handle(ctx, flow, registrationInput(c))
	if err != nil {
		return a.fail(c, err)
	}
	if err := a.persist(c, s, wizardRegistration, flow, out.Terminal); err != nil {
		return a.fail(c, err)
	}
	return a.renderRegistration(c, flow, out)
}

func registrationInput(c tele.Context) wizard.Input {
	msg := c.Message()
	switch {
	case msg == nil:
		return wizard.Input{}
	case msg.Photo != nil:
		return wizard.Input{PhotoRef: msg.Photo.FileID}
	case msg.Location != nil:
		return wizard.Input{Location: &wizard.Coordinates{
			Lat: float64(msg.Location.Lat),
			Lon: float64(msg.Location.Lng),
		}}
	}
	return wizard.Input{Text: msg.Text}
}

func (a *App) renderRegistration(c tele.Context, flow *wizard.RegistrationFlow, out wizard.Outcome) error {
	if out.Terminal {
		return a.sendTerminal(c, out, "registration")
	}
	form := flow.Form
	markup := a.registrationKeyboard(c, out.Step, form.BackNavigation)
	if out.Warning != nil {
		return tghelpers.SendText(c, a.warningText(out.Warning), markup)
	}

	var text string
	switch out.Prompt {
	case "photo_added", "photos_imported":
		text = a.texts.Resolvef("registration", out.Prompt, len(form.Photos), forms.MaxPhotosCount)
	case string(wizard.AskPhotos):
		text = a.texts.Resolvef("registration", out.Prompt, forms.MaxPhotosCount)
	case string(wizard.Confirm):
		if err := a.previewCard(c, form, nil); err != nil {
			return err
		}
		text = a.t("registration", out.Prompt)
	default:
		text = a.t("registration", out.Prompt)
	}
	return tghelpers.SendText(c, text, markup)
}
