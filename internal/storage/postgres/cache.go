package postgres

import (
	"context"
	"time"

	"github.com/maypok86/otter"

	"github.com/m3rciful/datebot/internal/forms"
)

// ProfileCache keeps recently shown cards in memory. Writes through it
// invalidate the cached card of the user.
type ProfileCache struct {
	repo  *ProfileRepo
	cards otter.Cache[int64, *Card]
}

// NewProfileCache wraps repo with a cache of capacity cards kept for ttl.
func NewProfileCache(repo *ProfileRepo, capacity int, ttl time.Duration) (*ProfileCache, error) {
	cards, err := otter.MustBuilder[int64, *Card](capacity).WithTTL(ttl).Build()
	if err != nil {
		return nil, err
	}
	return &ProfileCache{repo: repo, cards: cards}, nil
}

// Get returns the card of userID from cache or the database.
func (c *ProfileCache) Get(ctx context.Context, userID int64) (*Card, error) {
	if card, ok := c.cards.Get(userID); ok {
		return card, nil
	}
	card, err := c.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.cards.Set(userID, card)
	return card, nil
}

// Upsert writes through and drops the cached card.
func (c *ProfileCache) Upsert(ctx context.Context, p forms.Profile) error {
	defer c.cards.Delete(p.UserID)
	return c.repo.Upsert(ctx, p)
}

// SetPhotos writes through and drops the cached card.
func (c *ProfileCache) SetPhotos(ctx context.Context, userID int64, refs []string) error {
	defer c.cards.Delete(userID)
	return c.repo.SetPhotos(ctx, userID, refs)
}

// IsRegistered answers from the cache when the card is present.
func (c *ProfileCache) IsRegistered(ctx context.Context, userID int64) (bool, error) {
	if _, ok := c.cards.Get(userID); ok {
		return true, nil
	}
	return c.repo.IsRegistered(ctx, userID)
}

// Close stops the cache.
func (c *ProfileCache) Close() {
	c.cards.Close()
}
