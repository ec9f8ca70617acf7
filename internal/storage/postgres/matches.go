package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/datebot/core/logger"
	"github.com/m3rciful/datebot/internal/forms"
)

const defaultSearchLimit = 50

// MatchRepo answers the vote questions of the search wizard.
type MatchRepo struct {
	db    *sqlx.DB
	limit int
}

// NewMatchRepo wraps db. limit caps one search; zero means 50.
func NewMatchRepo(db *sqlx.DB, limit int) *MatchRepo {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &MatchRepo{db: db, limit: limit}
}

// HasVotes reports whether userID voted on anything.
func (r *MatchRepo) HasVotes(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	if err := r.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM votes WHERE user_id = $1)`, userID); err != nil {
		return false, fmt.Errorf("has votes: %w", err)
	}
	return ok, nil
}

// VotedSources lists the sources of the posts userID voted on, by id.
func (r *MatchRepo) VotedSources(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT p.source_id
		FROM votes v
		JOIN posts p ON p.id = v.post_id
		WHERE v.user_id = $1
		ORDER BY p.source_id`, userID); err != nil {
		return nil, fmt.Errorf("voted sources: %w", err)
	}
	return ids, nil
}

// HasCovotes reports whether another user voted on a post userID voted on
// within sources.
func (r *MatchRepo) HasCovotes(ctx context.Context, userID int64, sources []int64) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `
		SELECT EXISTS (
			SELECT 1
			FROM votes mine
			JOIN posts p ON p.id = mine.post_id
			JOIN votes other ON other.post_id = mine.post_id AND other.user_id <> mine.user_id
			WHERE mine.user_id = $1 AND p.source_id = ANY($2)
		)`, userID, pq.Array(sources))
	if err != nil {
		return false, fmt.Errorf("has covotes: %w", err)
	}
	return ok, nil
}

// Search ranks registered covoters by the number of posts in q.Sources they
// voted on the same way as userID, filtered by the profile fields of q.
func (r *MatchRepo) Search(ctx context.Context, userID int64, q forms.SearchQuery) ([]int64, error) {
	full := q.AgeRange == forms.FullAgeRange()
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `
		SELECT other.user_id
		FROM votes mine
		JOIN posts p ON p.id = mine.post_id
		JOIN votes other ON other.post_id = mine.post_id
			AND other.user_id <> mine.user_id
			AND other.value = mine.value
		JOIN users u ON u.user_id = other.user_id
		WHERE mine.user_id = $1
			AND p.source_id = ANY($2)
			AND ($3 = '' OR $3 = 'both' OR u.goal = $3 OR u.goal = 'both')
			AND ($4 = '' OR $4 = 'any' OR u.gender = $4)
			AND ((u.age IS NULL AND $7) OR u.age BETWEEN $5 AND $6)
			AND ($8 = '' OR lower(u.country) = lower($8))
			AND ($9 = '' OR lower(u.city) = lower($9))
			AND ($10 <> 'new' OR NOT EXISTS (
				SELECT 1 FROM shown_matches s WHERE s.user_id = $1 AND s.match_id = other.user_id
			))
		GROUP BY other.user_id
		ORDER BY count(*) DESC, other.user_id
		LIMIT $11`,
		userID, pq.Array(q.Sources), string(q.Goal), string(q.Gender),
		q.AgeRange.Min, q.AgeRange.Max, full, q.Country, q.City, string(q.Filter), r.limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search covoters: %w", err)
	}
	logger.Debug(ctx, componentSearch, "search.query",
		slog.Int("sources", len(q.Sources)),
		slog.Int("count", len(ids)),
	)
	return ids, nil
}

// MarkShown records that matchID was displayed to userID.
func (r *MatchRepo) MarkShown(ctx context.Context, userID, matchID int64) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO shown_matches (user_id, match_id) VALUES ($1, $2)
		ON CONFLICT (user_id, match_id) DO UPDATE SET shown_at = now()`,
		userID, matchID,
	); err != nil {
		return fmt.Errorf("mark shown: %w", err)
	}
	return nil
}
