package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/maxbolgarin/lang"

	tghelpers "github.com/m3rciful/datebot/core/telegram/helpers"
	"github.com/m3rciful/datebot/core/telegram/format"
	"github.com/m3rciful/datebot/internal/forms"
	"github.com/m3rciful/datebot/internal/storage/postgres"

	tele "gopkg.in/telebot.v4"
)

// cardText renders a profile as a Markdown caption.
func (a *App) cardText(p forms.Profile) string {
	var b strings.Builder
	b.WriteString("*" + format.Escape(p.Fullname) + "*")
	if p.Gender != "" {
		b.WriteString(", " + a.t("profile", "gender_"+string(p.Gender)))
	}
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "\n_%s:_ %s", a.t("profile", label), format.Escape(value))
		}
	}
	line("age", lang.If(p.Age != nil, strconv.Itoa(lang.Deref(p.Age)), ""))
	if p.Goal != "" {
		line("goal", a.t("profile", "goal_"+string(p.Goal)))
	}
	line("location", joinNonEmpty(", ", p.Country, p.City))
	line("about", p.Comment)
	return b.String()
}

// sendCard shows a profile with its photos. markup is attached to the
// message that carries the text.
func (a *App) sendCard(c tele.Context, card *postgres.Card, markup *tele.ReplyMarkup) error {
	text := a.cardText(card.Profile)
	switch len(card.Photos) {
	case 0:
		return tghelpers.SendMD(c, text, markup)
	case 1:
		return tghelpers.SendPhoto(c, card.Photos[0], text, markup)
	}
	if err := tghelpers.SendAlbum(c, card.Photos, ""); err != nil {
		return err
	}
	return tghelpers.SendMD(c, text, markup)
}

func (a *App) onProfile(c tele.Context) error {
	card, err := a.profiles.Get(tghelpers.BuildContext(c), tghelpers.UserID(c))
	if isNotFound(err) {
		return a.notRegistered(c)
	}
	if err != nil {
		return a.fail(c, err)
	}
	return a.sendCard(c, card, nil)
}

// previewCard shows the registration form before it is saved.
func (a *App) previewCard(c tele.Context, form *forms.NewUser, markup *tele.ReplyMarkup) error {
	card := &postgres.Card{Profile: form.Profile(), Photos: form.Photos}
	return a.sendCard(c, card, markup)
}

func isNotFound(err error) bool {
	return errors.Is(err, postgres.ErrNotFound)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
