package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes one inline button routed by Unique.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// RemoveKeyboard returns a markup that hides the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a resized reply keyboard from rows of labels. Empty
// labels are skipped and empty rows dropped.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			if label != "" {
				buttons = append(buttons, markup.Text(label))
			}
		}
		if len(buttons) > 0 {
			keyboard = append(keyboard, markup.Row(buttons...))
		}
	}
	markup.Reply(keyboard...)
	return markup
}

// LocationButtons is ReplyButtons with a share-location button on top.
func LocationButtons(share string, rows ...[]string) *tele.ReplyMarkup {
	markup := ReplyButtons(rows...)
	loc := markup.Location(share)
	markup.ReplyKeyboard = append([][]tele.ReplyButton{{*loc.Reply()}}, markup.ReplyKeyboard...)
	return markup
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

// Inline wraps a raw button grid, such as a checklist, into a markup.
func Inline(grid [][]tele.InlineButton) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: grid}
}
