package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command describes a slash command and how it is exposed.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands run for the configured admin only and stay out of
	// the public command menu.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
	// Guards wrap Handler, outermost first.
	Guards []tele.MiddlewareFunc
}

// Wrapped returns Handler with Guards applied.
func (c Command) Wrapped() tele.HandlerFunc {
	h := c.Handler
	for i := len(c.Guards) - 1; i >= 0; i-- {
		if c.Guards[i] != nil {
			h = c.Guards[i](h)
		}
	}
	return h
}
