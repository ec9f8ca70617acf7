package state

import (
	tghelpers "github.com/m3rciful/datebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const cachedSession = "session"

// Load fetches the session of the sender of c once per update and caches it
// on c. A user without a session gets an empty, inactive one.
func Load(c tele.Context, store Store) (*Session, error) {
	if s, ok := c.Get(cachedSession).(*Session); ok && s != nil {
		return s, nil
	}
	sender := c.Sender()
	if sender == nil {
		return &Session{}, nil
	}
	s, err := store.Get(tghelpers.BuildContext(c), sender.ID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &Session{}
	}
	c.Set(cachedSession, s)
	return s, nil
}

// Current returns the session cached on c by Load or WithSession.
func Current(c tele.Context) *Session {
	s, _ := c.Get(cachedSession).(*Session)
	return s
}

// WithSession loads the session before next runs.
func WithSession(store Store) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if _, err := Load(c, store); err != nil {
				return err
			}
			return next(c)
		}
	}
}
