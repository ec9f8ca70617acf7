package middleware

import (
	tele "gopkg.in/telebot.v4"
)

const (
	counterMessages = "messages"
	counterKeyboard = "kb"
)

// metricsContext counts replies sent through the context and notes whether
// any of them carried a keyboard.
type metricsContext struct{ tele.Context }

func (m metricsContext) record(err error, opts []any) error {
	if err != nil {
		return err
	}
	n, _ := m.Get(counterMessages).(int)
	m.Set(counterMessages, n+1)
	if hasKeyboard(opts) {
		m.Set(counterKeyboard, true)
	}
	return nil
}

func hasKeyboard(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) Send(what any, opts ...any) error {
	return m.record(m.Context.Send(what, opts...), opts)
}

func (m metricsContext) Reply(what any, opts ...any) error {
	return m.record(m.Context.Reply(what, opts...), opts)
}

func (m metricsContext) Edit(what any, opts ...any) error {
	return m.record(m.Context.Edit(what, opts...), opts)
}

func (m metricsContext) SendAlbum(a tele.Album, opts ...any) error {
	return m.record(m.Context.SendAlbum(a, opts...), opts)
}

// MessageMetricsMiddleware wraps the context so handler summaries can report
// how many messages a handler produced.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(counterMessages, 0)
		c.Set(counterKeyboard, false)
		return next(metricsContext{Context: c})
	}
}

// GetCounters returns the message count and keyboard flag of c.
func GetCounters(c tele.Context) (int, bool) {
	msgs, _ := c.Get(counterMessages).(int)
	kb, _ := c.Get(counterKeyboard).(bool)
	return msgs, kb
}
