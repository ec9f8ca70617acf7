package middleware

import tele "gopkg.in/telebot.v4"

// Guard runs next only when allow accepts the update. Rejected updates go
// to onReject when set and are dropped otherwise.
func Guard(allow func(tele.Context) bool, onReject tele.HandlerFunc) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if allow(c) {
				return next(c)
			}
			if onReject != nil {
				return onReject(c)
			}
			return nil
		}
	}
}

// AdminOptions defines how admin-only checks behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware lets only the configured admin through. With no admin
// configured nobody passes.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return Guard(func(c tele.Context) bool {
		u := c.Sender()
		return opts.AdminID != 0 && u != nil && u.ID == opts.AdminID
	}, opts.OnReject)
}
