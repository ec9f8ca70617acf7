package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/m3rciful/datebot/core/logger"
)

const sessionPrefix = "session:"

type redisStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisStore keeps sessions as JSON strings that expire after ttl of
// inactivity. Every Save and Get refreshes the expiry.
func NewRedisStore(client *goredis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func sessionKey(userID int64) string {
	return sessionPrefix + strconv.FormatInt(userID, 10)
}

func (r *redisStore) Get(ctx context.Context, userID int64) (*Session, error) {
	if r.client == nil {
		return nil, errors.New("redis client is nil")
	}
	raw, err := r.client.GetEx(ctx, sessionKey(userID), r.ttl).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get redis session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		logger.Warn(ctx, componentSession, "session.corrupt",
			slog.String("backend", "redis"),
			slog.String("err", err.Error()),
		)
		_ = r.Clear(ctx, userID)
		return nil, nil
	}
	return &s, nil
}

func (r *redisStore) Save(ctx context.Context, userID int64, s *Session) error {
	if r.client == nil {
		return errors.New("redis client is nil")
	}
	if s == nil {
		return r.Clear(ctx, userID)
	}
	s.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode redis session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save redis session: %w", err)
	}
	logger.Debug(ctx, componentSession, "session.save",
		slog.String("backend", "redis"),
		slog.String("wizard", s.Wizard),
	)
	return nil
}

func (r *redisStore) Clear(ctx context.Context, userID int64) error {
	if r.client == nil {
		return errors.New("redis client is nil")
	}
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear redis session: %w", err)
	}
	return nil
}
