package app

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/m3rciful/datebot/core/logger"
	"github.com/m3rciful/datebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/datebot/core/telegram/helpers"
	"github.com/m3rciful/datebot/core/telegram/keyboard"
	"github.com/m3rciful/datebot/core/telegram/state"
	"github.com/m3rciful/datebot/internal/forms"
	"github.com/m3rciful/datebot/internal/wizard"

	tele "gopkg.in/telebot.v4"
)

// onSearch opens the search wizard. The searched country defaults to the
// country of the searcher.
func (a *App) onSearch(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.UserID(c)
	flow, out, err := a.search.HandleStartSearch(ctx, uid, a.cfg.Forms.BackNavigation)
	if err != nil {
		return a.fail(c, err)
	}
	if flow == nil {
		return a.sendTerminal(c, out, "search")
	}
	if card, err := a.profiles.Get(ctx, uid); err == nil {
		flow.Form.Country = card.Country
	} else if !isNotFound(err) {
		return a.fail(c, err)
	}
	logger.Info(ctx, component, "wizard.start",
		slog.String("wizard", wizardSearch),
		slog.Int("sources", flow.Form.SourceCount()),
	)
	return a.afterSearchTurn(c, &state.Session{}, flow, out)
}

// searchTurn answers one text message of a running search.
func (a *App) searchTurn(c tele.Context) error {
	s := state.Current(c)
	flow, err := state.Decode[wizard.SearchFlow](s)
	if err != nil {
		return a.restart(c, err)
	}
	ctx := tghelpers.WithStep(c, string(flow.Step))
	out, err := a.search.Handle(ctx, flow, c.Text())
	if err != nil {
		return a.fail(c, err)
	}
	return a.afterSearchTurn(c, s, flow, out)
}

// afterSearchTurn persists the flow and renders the outcome.
func (a *App) afterSearchTurn(c tele.Context, s *state.Session, flow *wizard.SearchFlow, out wizard.Outcome) error {
	if out.Step == wizard.SourceSelection && out.Warning == nil && s.MenuID == 0 {
		msg, err := tghelpers.SendMenu(c, a.t("search", string(wizard.SourceSelection)), a.sourceMenu(c, flow))
		if err != nil {
			return a.fail(c, err)
		}
		if msg != nil {
			s.MenuID = msg.ID
		}
		if err := a.persist(c, s, wizardSearch, flow, false); err != nil {
			return a.fail(c, err)
		}
		return nil
	}
	if err := a.persist(c, s, wizardSearch, flow, out.Terminal); err != nil {
		return a.fail(c, err)
	}
	return a.renderSearch(c, flow, out)
}

func (a *App) renderSearch(c tele.Context, flow *wizard.SearchFlow, out wizard.Outcome) error {
	if out.Terminal {
		return a.sendTerminal(c, out, "search")
	}
	if out.Warning != nil {
		if out.Step == wizard.SourceSelection {
			return c.Respond(&tele.CallbackResponse{Text: a.warningText(out.Warning), ShowAlert: true})
		}
		return tghelpers.SendText(c, a.warningText(out.Warning), a.searchKeyboard(out.Step, flow.BackNavigation))
	}
	if out.Step == wizard.SourceSelection {
		return tghelpers.SendText(c, a.t("search", out.Prompt))
	}
	markup := a.searchKeyboard(out.Step, flow.BackNavigation)
	if out.Step != wizard.ShowResults {
		return tghelpers.SendText(c, a.t("search", out.Prompt), markup)
	}

	if err := tghelpers.SendText(c, a.t("search", out.Prompt), markup); err != nil {
		return err
	}
	card, err := a.profiles.Get(tghelpers.BuildContext(c), out.Match)
	if isNotFound(err) {
		return tghelpers.SendText(c, a.t("messages", "profile_missing"), markup)
	}
	if err != nil {
		return a.fail(c, err)
	}
	return a.sendCard(c, card, markup)
}

// sourceMenu renders the source checklist with the filter and continue
// controls below it.
func (a *App) sourceMenu(c tele.Context, flow *wizard.SearchFlow) *tele.ReplyMarkup {
	choices := flow.Form.Sources()
	ids := make([]int64, len(choices))
	for i, ch := range choices {
		ids[i] = ch.ID
	}
	names, err := a.votes.SourceNames(tghelpers.BuildContext(c), ids)
	if err != nil {
		logger.Warn(tghelpers.BuildContext(c), component, "sources.names",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	items := make([]keyboard.ChecklistItem, len(choices))
	for i, ch := range choices {
		key := strconv.FormatInt(ch.ID, 10)
		label := names[ch.ID]
		if label == "" {
			label = "#" + key
		}
		items[i] = keyboard.ChecklistItem{Key: key, Label: label, Chosen: ch.Chosen}
	}
	grid := keyboard.BuildChecklist(checklistPrefix, items, keyboard.ChecklistOptions{
		ButtonsInRow:   a.cfg.Forms.ButtonsInRow,
		CheckboxOnLeft: a.cfg.Forms.CheckboxOnLeft,
		AllLabel:       a.t("buttons", "sources_all"),
	})
	controls := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: a.filterLabel(flow.Form.Filter), Unique: cbFilter}},
		[]keyboard.InlineBtn{{Text: a.t("buttons", "sources_ok"), Unique: cbSourcesOK}},
	)
	return keyboard.Inline(append(grid, controls.InlineKeyboard...))
}

func (a *App) filterLabel(f forms.MatchFilter) string {
	if f == forms.AllMatches {
		return a.t("buttons", "filter_all")
	}
	return a.t("buttons", "filter_new")
}

// searchFlow loads the running search for a checklist callback.
func (a *App) searchFlow(c tele.Context) (*state.Session, *wizard.SearchFlow, error) {
	s := state.Current(c)
	flow, err := state.Decode[wizard.SearchFlow](s)
	if err != nil {
		return nil, nil, err
	}
	tghelpers.WithStep(c, string(flow.Step))
	return s, flow, nil
}

// onSourceToggle applies a checklist tap to both the flow and the keyboard
// the user tapped.
func (a *App) onSourceToggle(c tele.Context) error {
	s, flow, err := a.searchFlow(c)
	if err != nil {
		return a.restart(c, err)
	}
	data := callbacks.Payload(c)
	tok, err := keyboard.DecodeToken(data)
	if err != nil {
		logger.Warn(tghelpers.BuildContext(c), component, "checklist.token",
			slog.String("err", err.Error()),
		)
		return c.Respond()
	}
	key, err := strconv.ParseInt(tok.Key, 10, 64)
	if err != nil {
		return c.Respond()
	}
	if err := a.search.HandleSourceCallback(flow, key, tok.NewValue()); err != nil {
		logger.Warn(tghelpers.BuildContext(c), component, "checklist.toggle",
			slog.String("err", err.Error()),
		)
		return c.Respond()
	}
	if err := a.persist(c, s, wizardSearch, flow, false); err != nil {
		return a.fail(c, err)
	}

	markup := a.sourceMenu(c, flow)
	if msg := c.Message(); msg != nil && msg.ReplyMarkup != nil {
		grid, err := keyboard.ToggleChecklist(msg.ReplyMarkup.InlineKeyboard, data)
		if err == nil {
			markup = keyboard.Inline(keyboard.SyncAllControl(grid, checklistPrefix))
		} else {
			level := logger.Warn
			if errors.Is(err, keyboard.ErrUnknownToken) {
				level = logger.Error
			}
			level(tghelpers.BuildContext(c), component, "checklist.rebuild",
				slog.String("err", err.Error()),
			)
		}
	}
	if msg := c.Message(); msg != nil {
		if err := tghelpers.EditMarkup(c, msg, markup); err != nil {
			return err
		}
	}
	return c.Respond()
}

func (a *App) onFilterToggle(c tele.Context) error {
	s, flow, err := a.searchFlow(c)
	if err != nil {
		return a.restart(c, err)
	}
	filter, err := a.search.ToggleFilter(flow)
	if err != nil {
		return c.Respond()
	}
	if err := a.persist(c, s, wizardSearch, flow, false); err != nil {
		return a.fail(c, err)
	}
	if msg := c.Message(); msg != nil {
		if err := tghelpers.EditMarkup(c, msg, a.sourceMenu(c, flow)); err != nil {
			return err
		}
	}
	return c.Respond(&tele.CallbackResponse{Text: a.filterLabel(filter)})
}

func (a *App) onSourcesConfirm(c tele.Context) error {
	s, flow, err := a.searchFlow(c)
	if err != nil {
		return a.restart(c, err)
	}
	out, err := a.search.ConfirmSources(tghelpers.BuildContext(c), flow)
	if err != nil {
		return a.fail(c, err)
	}
	if out.Warning != nil && !out.Terminal {
		return a.renderSearch(c, flow, out)
	}
	if err := c.Respond(); err != nil {
		logger.Debug(tghelpers.BuildContext(c), component, "callback.respond", slog.String("err", err.Error()))
	}
	if msg := c.Message(); msg != nil {
		if err := tghelpers.EditMarkup(c, msg, nil); err != nil {
			return err
		}
	}
	s.MenuID = 0
	if err := a.persist(c, s, wizardSearch, flow, out.Terminal); err != nil {
		return a.fail(c, err)
	}
	return a.renderSearch(c, flow, out)
}
