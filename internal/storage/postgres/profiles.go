package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/datebot/core/logger"
	"github.com/m3rciful/datebot/internal/forms"
)

// Card is a stored profile with its photos in display order.
type Card struct {
	forms.Profile
	Photos []string
}

// ProfileRepo persists registered profiles.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo wraps db.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Upsert inserts p or replaces the stored profile of p.UserID. The first
// registration time is kept.
func (r *ProfileRepo) Upsert(ctx context.Context, p forms.Profile) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (user_id, fullname, goal, gender, age, country, city, comment)
		VALUES (:user_id, :fullname, :goal, :gender, :age, :country, :city, :comment)
		ON CONFLICT (user_id) DO UPDATE
		SET fullname = EXCLUDED.fullname,
			goal = EXCLUDED.goal,
			gender = EXCLUDED.gender,
			age = EXCLUDED.age,
			country = EXCLUDED.country,
			city = EXCLUDED.city,
			comment = EXCLUDED.comment,
			updated_at = now()`, p)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	logger.Info(ctx, componentProfiles, "profile.upsert",
		slog.String("status", "ok"),
		slog.Int64("user_id", p.UserID),
	)
	return nil
}

// SetPhotos replaces the photos of userID with refs in one transaction.
func (r *ProfileRepo) SetPhotos(ctx context.Context, userID int64, refs []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set photos: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM photos WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("set photos: clear: %w", err)
	}
	for i, ref := range refs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO photos (user_id, position, file_ref) VALUES ($1, $2, $3)`,
			userID, i, ref,
		); err != nil {
			return fmt.Errorf("set photos: insert: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("set photos: commit: %w", err)
	}
	return nil
}

// Get loads the profile and photos of userID. A missing user is ErrNotFound.
func (r *ProfileRepo) Get(ctx context.Context, userID int64) (*Card, error) {
	var card Card
	err := r.db.GetContext(ctx, &card.Profile, `
		SELECT user_id, fullname, goal, gender, age, country, city, comment
		FROM users
		WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if err := r.db.SelectContext(ctx, &card.Photos,
		`SELECT file_ref FROM photos WHERE user_id = $1 ORDER BY position`, userID,
	); err != nil {
		return nil, fmt.Errorf("get photos: %w", err)
	}
	return &card, nil
}

// IsRegistered reports whether userID has a profile.
func (r *ProfileRepo) IsRegistered(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	if err := r.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID); err != nil {
		return false, fmt.Errorf("is registered: %w", err)
	}
	return ok, nil
}
