package router

import (
	"time"

	tg "github.com/m3rciful/datebot/core/telegram"
	"github.com/m3rciful/datebot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// FSM hands updates of users inside a conversation to its handler.
type FSM interface {
	InProgress(c tele.Context) bool
	ManagerHandler(c tele.Context) error
}

// MessageOptions sets fallbacks for messages no conversation claims.
type MessageOptions struct {
	UnknownText tele.HandlerFunc
	// UnexpectedMedia answers photos and locations sent outside a wizard.
	UnexpectedMedia tele.HandlerFunc
}

// FallbackOptions takes the message fallbacks from p.
func FallbackOptions(p ui.FallbackProvider) MessageOptions {
	if p == nil {
		return MessageOptions{}
	}
	return MessageOptions{UnknownText: p.UnknownText(), UnexpectedMedia: p.UnexpectedMedia()}
}

// MessageRoutes routes text, photo and location messages. Registered
// commands and aliases are matched first so /cancel works mid-conversation;
// any other text answers the active conversation.
func MessageRoutes(fsm FSM, reg *tg.Registry, opts MessageOptions) []tg.Route {
	text := func(c tele.Context) error {
		start := time.Now()
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				h := cmd.Wrapped()
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error { return h(c) })
			}
		}
		if fsm != nil && fsm.InProgress(c) {
			return handleWithSummary(c, "fsm", start, func() error { return fsm.ManagerHandler(c) })
		}
		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error { return fb(c) })
			}
		}
		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error { return opts.UnknownText(c) })
		}
		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	media := func(name string) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			if fsm != nil && fsm.InProgress(c) {
				return handleWithSummary(c, "fsm_"+name, start, func() error { return fsm.ManagerHandler(c) })
			}
			if opts.UnexpectedMedia != nil {
				return handleWithSummary(c, "unexpected_"+name, start, func() error { return opts.UnexpectedMedia(c) })
			}
			logHandlerSummary(c, "unexpected_"+name, start, "skip", nil)
			return nil
		}
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: text},
		{Endpoint: tele.OnPhoto, Handler: media("photo")},
		{Endpoint: tele.OnLocation, Handler: media("location")},
	}
}
