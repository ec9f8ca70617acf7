package helpers

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// UserID is the sender id of c, or 0 for updates without a sender.
func UserID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

// ChatID is the chat id of c, or 0 when the update has no chat.
func ChatID(c tele.Context) int64 {
	if ch := c.Chat(); ch != nil {
		return ch.ID
	}
	return 0
}

// Language returns the two letter language code of the sender, lower case.
func Language(c tele.Context) string {
	u := c.Sender()
	if u == nil {
		return ""
	}
	code, _, _ := strings.Cut(strings.ToLower(u.LanguageCode), "-")
	return code
}
