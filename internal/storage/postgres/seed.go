package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/datebot/core/logger"
)

// SeedPost is one post of a seed file.
type SeedPost struct {
	Text  string `yaml:"text"`
	Photo string `yaml:"photo"`
}

// SeedSource is a source with its posts.
type SeedSource struct {
	Name  string     `yaml:"name"`
	Posts []SeedPost `yaml:"posts"`
}

// ContentSeeder loads sources and posts from a YAML file. Seeding is
// idempotent: known sources and posts are left alone.
type ContentSeeder struct {
	Sources []SeedSource `yaml:"sources"`
}

// LoadSeed reads a seed file.
func LoadSeed(path string) (*ContentSeeder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var s ContentSeeder
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &s, nil
}

// Seed writes the content in one transaction.
func (s *ContentSeeder) Seed(ctx context.Context, db *sqlx.DB) (err error) {
	if len(s.Sources) == 0 {
		return nil
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	posts := 0
	for _, src := range s.Sources {
		if src.Name == "" {
			continue
		}
		var id int64
		if err = tx.GetContext(ctx, &id, `
			INSERT INTO sources (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, src.Name); err != nil {
			return fmt.Errorf("seed source %q: %w", src.Name, err)
		}
		for _, p := range src.Posts {
			res, execErr := tx.ExecContext(ctx, `
				INSERT INTO posts (source_id, content, photo_ref) VALUES ($1, $2, $3)
				ON CONFLICT (source_id, content) DO NOTHING`, id, p.Text, p.Photo)
			if execErr != nil {
				err = fmt.Errorf("seed post of %q: %w", src.Name, execErr)
				return err
			}
			if n, _ := res.RowsAffected(); n > 0 {
				posts++
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	logger.Info(ctx, "db", "seed.content",
		slog.Int("sources", len(s.Sources)),
		slog.Int("posts", posts),
	)
	return nil
}
