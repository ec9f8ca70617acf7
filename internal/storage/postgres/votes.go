package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/datebot/core/logger"
)

// ErrVoteValue reports a vote that is neither 1 nor -1.
var ErrVoteValue = errors.New("postgres: vote must be 1 or -1")

// Post is one votable content item.
type Post struct {
	ID         int64  `db:"id"`
	SourceID   int64  `db:"source_id"`
	SourceName string `db:"source_name"`
	Content    string `db:"content"`
	PhotoRef   string `db:"photo_ref"`
}

// Stats are the totals shown to the admin.
type Stats struct {
	Users int `db:"users"`
	Votes int `db:"votes"`
	Posts int `db:"posts"`
}

// VoteRepo serves posts and records votes.
type VoteRepo struct {
	db *sqlx.DB
}

// NewVoteRepo wraps db.
func NewVoteRepo(db *sqlx.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

// NextPost returns the oldest post userID has not voted on. ErrNotFound
// means every post is voted.
func (r *VoteRepo) NextPost(ctx context.Context, userID int64) (*Post, error) {
	var p Post
	err := r.db.GetContext(ctx, &p, `
		SELECT p.id, p.source_id, s.name AS source_name, p.content, p.photo_ref
		FROM posts p
		JOIN sources s ON s.id = p.source_id
		WHERE NOT EXISTS (SELECT 1 FROM votes v WHERE v.post_id = p.id AND v.user_id = $1)
		ORDER BY p.id
		LIMIT 1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("next post: %w", err)
	}
	return &p, nil
}

// RecordVote stores or changes the vote of userID on postID.
func (r *VoteRepo) RecordVote(ctx context.Context, userID, postID int64, value int) error {
	if value != 1 && value != -1 {
		return ErrVoteValue
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO votes (user_id, post_id, value) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, post_id) DO UPDATE SET value = EXCLUDED.value, voted_at = now()`,
		userID, postID, value,
	); err != nil {
		return fmt.Errorf("record vote: %w", err)
	}
	logger.Debug(ctx, componentSearch, "vote.recorded",
		slog.Int64("post_id", postID),
		slog.Int("value", value),
	)
	return nil
}

// SourceNames maps source ids to their names.
func (r *VoteRepo) SourceNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	rows := []struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name FROM sources WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("source names: %w", err)
	}
	out := make(map[int64]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}

// Stats counts users, votes and posts.
func (r *VoteRepo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.GetContext(ctx, &s, `
		SELECT (SELECT count(*) FROM users) AS users,
			(SELECT count(*) FROM votes) AS votes,
			(SELECT count(*) FROM posts) AS posts`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return s, nil
}
