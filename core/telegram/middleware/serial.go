package middleware

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

// userLocks hands out one mutex per user and frees it when the last holder
// leaves.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func (l *userLocks) acquire(id int64) *userLock {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &userLock{}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()
	lk.Lock()
	return lk
}

func (l *userLocks) release(id int64, lk *userLock) {
	lk.Unlock()
	l.mu.Lock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()
}

// SerialPerUser runs the updates of one user one at a time. Conversation
// state is read, advanced and saved inside a handler, so two updates of the
// same user must not interleave.
func SerialPerUser() tele.MiddlewareFunc {
	locks := &userLocks{locks: make(map[int64]*userLock)}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			u := c.Sender()
			if u == nil {
				return next(c)
			}
			lk := locks.acquire(u.ID)
			defer locks.release(u.ID, lk)
			return next(c)
		}
	}
}
