package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maypok86/otter"

	"github.com/m3rciful/datebot/core/logger"
)

const componentSession = "service.session"

type memoryStore struct {
	cache otter.Cache[int64, Session]
	now   func() time.Time
}

// NewMemoryStore builds an in-process store holding at most capacity
// sessions. Sessions untouched for ttl are dropped.
func NewMemoryStore(capacity int, ttl time.Duration) (Store, error) {
	c, err := otter.MustBuilder[int64, Session](capacity).WithTTL(ttl).Build()
	if err != nil {
		return nil, fmt.Errorf("state: build session cache with capacity %d: %w", capacity, err)
	}
	return &memoryStore{cache: c, now: time.Now}, nil
}

func (m *memoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	s, ok := m.cache.Get(userID)
	if !ok {
		return nil, nil
	}
	return s.clone(), nil
}

func (m *memoryStore) Save(ctx context.Context, userID int64, s *Session) error {
	if s == nil {
		return m.Clear(ctx, userID)
	}
	cp := s.clone()
	cp.UpdatedAt = m.now()
	if !m.cache.Set(userID, *cp) {
		return fmt.Errorf("state: session cache rejected user %d", userID)
	}
	s.UpdatedAt = cp.UpdatedAt
	logger.Debug(ctx, componentSession, "session.save",
		slog.String("backend", "memory"),
		slog.String("wizard", s.Wizard),
	)
	return nil
}

func (m *memoryStore) Clear(_ context.Context, userID int64) error {
	m.cache.Delete(userID)
	return nil
}
