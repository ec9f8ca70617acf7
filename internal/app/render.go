package app

import (
	"errors"

	tghelpers "github.com/m3rciful/datebot/core/telegram/helpers"
	"github.com/m3rciful/datebot/core/telegram/keyboard"
	"github.com/m3rciful/datebot/internal/forms"
	"github.com/m3rciful/datebot/internal/wizard"

	tele "gopkg.in/telebot.v4"
)

func keyboardRemoved() *tele.ReplyMarkup { return keyboard.RemoveKeyboard() }

// warningText renders a condition raised by a wizard.
func (a *App) warningText(err error) string {
	var cond *forms.Condition
	if errors.As(err, &cond) {
		return a.t("warnings", cond.Code())
	}
	return a.t("messages", "error")
}

func (a *App) backRow(enabled bool) []string {
	if !enabled {
		return nil
	}
	return []string{a.kw.Back}
}

func (a *App) goalRow() []string {
	return []string{a.kw.GoalChat, a.kw.GoalDate, a.kw.GoalBoth}
}

// registrationKeyboard is the reply keyboard of a registration step.
func (a *App) registrationKeyboard(c tele.Context, step wizard.Step, back bool) *tele.ReplyMarkup {
	switch step {
	case wizard.AskName:
		if u := c.Sender(); u != nil && u.FirstName != "" {
			return keyboard.ReplyButtons([]string{u.FirstName})
		}
		return keyboardRemoved()
	case wizard.AskGoal:
		return keyboard.ReplyButtons(a.goalRow(), a.backRow(back))
	case wizard.AskGender:
		return keyboard.ReplyButtons([]string{a.kw.GenderMale, a.kw.GenderFemale}, a.backRow(back))
	case wizard.AskAge, wizard.AskComment:
		return keyboard.ReplyButtons([]string{a.kw.Skip}, a.backRow(back))
	case wizard.AskLocation:
		return keyboard.LocationButtons(a.t("buttons", "share_location"), []string{a.kw.Skip}, a.backRow(back))
	case wizard.AskPhotos:
		return keyboard.ReplyButtons(
			[]string{a.kw.ImportPhotos},
			[]string{a.kw.RemovePhotos, a.kw.Finish},
			a.backRow(back),
		)
	case wizard.Confirm:
		return keyboard.ReplyButtons([]string{a.kw.Finish}, a.backRow(back))
	}
	return keyboardRemoved()
}

// searchKeyboard is the reply keyboard of a text driven search step.
func (a *App) searchKeyboard(step wizard.Step, back bool) *tele.ReplyMarkup {
	switch step {
	case wizard.AskGoal:
		return keyboard.ReplyButtons(a.goalRow(), a.backRow(back))
	case wizard.AskGender:
		return keyboard.ReplyButtons([]string{a.kw.GenderMale, a.kw.GenderFemale}, []string{a.kw.AnyGender}, a.backRow(back))
	case wizard.AskAge:
		return keyboard.ReplyButtons([]string{a.kw.AnyAge}, a.backRow(back))
	case wizard.ShowResults:
		return keyboard.ReplyButtons([]string{a.kw.ShowMore, a.kw.Finish})
	}
	return keyboardRemoved()
}

// sendTerminal closes a conversation with its final message.
func (a *App) sendTerminal(c tele.Context, out wizard.Outcome, domain string) error {
	text := a.t(domain, out.Prompt)
	if out.Warning != nil {
		text = a.warningText(out.Warning)
	}
	if out.Prompt == "" && out.Warning == nil {
		return nil
	}
	return tghelpers.SendText(c, text, keyboardRemoved())
}
