package state

import (
	"log/slog"

	"github.com/m3rciful/datebot/core/logger"
	tghelpers "github.com/m3rciful/datebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Manager routes updates of users with an active wizard to the handler
// registered for that wizard.
type Manager struct {
	store    Store
	handlers map[string]tele.HandlerFunc
}

// NewManager wraps store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, handlers: make(map[string]tele.HandlerFunc)}
}

// Store returns the underlying session store.
func (m *Manager) Store() Store { return m.store }

// RegisterHandler binds wizard to h.
func (m *Manager) RegisterHandler(wizard string, h tele.HandlerFunc) {
	if h == nil || wizard == "" {
		return
	}
	m.handlers[wizard] = h
}

// InProgress reports whether the sender of c has an active session. The
// loaded session is cached on c for the handler.
func (m *Manager) InProgress(c tele.Context) bool {
	s, err := Load(c, m.store)
	if err != nil {
		logger.Error(tghelpers.BuildContext(c), componentSession, "session.load",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return false
	}
	return s.Active()
}

// ManagerHandler runs the handler of the active wizard.
func (m *Manager) ManagerHandler(c tele.Context) error {
	s := Current(c)
	if !s.Active() {
		return nil
	}
	h, ok := m.handlers[s.Wizard]
	if !ok {
		logger.Warn(tghelpers.BuildContext(c), componentSession, "session.unhandled",
			slog.String("wizard", s.Wizard),
		)
		return nil
	}
	return h(c)
}

// ActiveWizard returns the wizard the sender of c is running, or "".
func (m *Manager) ActiveWizard(c tele.Context) string {
	if !m.InProgress(c) {
		return ""
	}
	return Current(c).Wizard
}
