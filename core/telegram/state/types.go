package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNoFlow is returned by Decode for a session without a flow.
var ErrNoFlow = errors.New("state: session has no flow")

// Session is the persisted conversation of one user.
type Session struct {
	Wizard string          `json:"wizard"`
	Flow   json.RawMessage `json:"flow,omitempty"`
	// MenuID is the message carrying the inline keyboard of the current step.
	MenuID    int       `json:"menu_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether a wizard is running.
func (s *Session) Active() bool {
	return s != nil && s.Wizard != ""
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Flow = append(json.RawMessage(nil), s.Flow...)
	return &out
}

// Store persists sessions by user id.
type Store interface {
	// Get returns nil without error when the user has no session.
	Get(ctx context.Context, userID int64) (*Session, error)
	Save(ctx context.Context, userID int64, s *Session) error
	Clear(ctx context.Context, userID int64) error
}

// Encode replaces the session flow with flow, tagged as wizard.
func Encode[T any](s *Session, wizard string, flow T) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("state: encode %s flow: %w", wizard, err)
	}
	s.Wizard = wizard
	s.Flow = data
	return nil
}

// Decode reads the session flow into a fresh T.
func Decode[T any](s *Session) (*T, error) {
	if s == nil || len(s.Flow) == 0 {
		return nil, ErrNoFlow
	}
	var out T
	if err := json.Unmarshal(s.Flow, &out); err != nil {
		return nil, fmt.Errorf("state: decode %s flow: %w", s.Wizard, err)
	}
	return &out, nil
}
