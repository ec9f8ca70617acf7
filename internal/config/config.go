// Package config is the application configuration: the core sections plus
// storage, session, geocoder, form and locale settings.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/datebot/core/config"
	coredatabase "github.com/m3rciful/datebot/core/database"
	"github.com/m3rciful/datebot/internal/geocode"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// SessionConfig selects where conversation state lives and how long an
// idle conversation survives.
type SessionConfig struct {
	Backend  string        `yaml:"backend" envconfig:"SESSION_BACKEND"`
	TTL      time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
	Capacity int           `yaml:"capacity"`
}

// FormsConfig tunes the wizards and the checklist layout.
type FormsConfig struct {
	BackNavigation bool `yaml:"back_navigation" envconfig:"FORMS_BACK_NAVIGATION"`
	ButtonsInRow   int  `yaml:"buttons_in_row"`
	CheckboxOnLeft bool `yaml:"checkbox_on_left"`
}

// SearchConfig tunes matching and profile rendering.
type SearchConfig struct {
	Limit           int           `yaml:"limit"`
	ProfileCacheTTL time.Duration `yaml:"profile_cache_ttl"`
}

// LocaleConfig picks the language of the bot.
type LocaleConfig struct {
	Default string `yaml:"default" envconfig:"LOCALE"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config      `yaml:"database"`
	Redis    coredatabase.RedisConfig `yaml:"redis"`
	Session  SessionConfig            `yaml:"session"`
	Geocoder geocode.Config           `yaml:"geocoder"`
	Forms    FormsConfig              `yaml:"forms"`
	Search   SearchConfig             `yaml:"search"`
	Locale   LocaleConfig             `yaml:"locale"`
	// SeedFile lists sources and posts loaded at startup. Empty disables
	// seeding.
	SeedFile string `yaml:"seed_file" envconfig:"SEED_FILE"`
}

// CoreConfig exposes the core sections to the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Database.Host) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
		return errors.New("database.host and database.name are required")
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}

	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	switch cfg.Session.Backend {
	case "":
		cfg.Session.Backend = SessionMemory
	case SessionMemory:
	case SessionRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			return errors.New("redis.addr is required for the redis session backend")
		}
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: %s, %s", cfg.Session.Backend, SessionMemory, SessionRedis)
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Session.Capacity <= 0 {
		cfg.Session.Capacity = 10_000
	}

	if cfg.Forms.ButtonsInRow <= 0 {
		cfg.Forms.ButtonsInRow = 2
	}
	if cfg.Search.ProfileCacheTTL <= 0 {
		cfg.Search.ProfileCacheTTL = 10 * time.Minute
	}
	if cfg.Geocoder.Timeout <= 0 {
		cfg.Geocoder.Timeout = 5 * time.Second
	}
	if cfg.Locale.Default == "" {
		cfg.Locale.Default = "en"
	}
	return nil
}

// RedisEnabled reports whether Redis must be dialled at startup.
func (c *Config) RedisEnabled() bool {
	return c.Session.Backend == SessionRedis
}
