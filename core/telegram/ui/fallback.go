package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider answers updates that no command, callback or active
// conversation claims.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnexpectedMedia() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}
