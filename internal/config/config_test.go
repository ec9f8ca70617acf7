package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/datebot/core/config"
)

const sample = `
telegram:
  token: "123:abc"
  admin_id: 42
  run_mode: polling
logging:
  level: debug
rate_limit:
  interval_ms: 500
  exclude_updates: [Callback, ""]
database:
  host: db
  name: dating
  user: bot
session:
  backend: redis
  ttl: 30m
redis:
  addr: redis:6379
forms:
  back_navigation: true
  buttons_in_row: 3
geocoder:
  base_url: http://geo.local
locale:
  default: ru
seed_file: seed.yaml
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" || cfg.Telegram.AdminID != 42 {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
	if cfg.Telegram.RunMode != coreconfig.RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if len(cfg.RateLimit.ExcludeUpdates) != 1 || cfg.RateLimit.ExcludeUpdates[0] != coreconfig.UpdateCallback {
		t.Fatalf("exclude = %v", cfg.RateLimit.ExcludeUpdates)
	}
	if cfg.Database.Port != "5432" {
		t.Fatalf("db port default = %q", cfg.Database.Port)
	}
	if !cfg.RedisEnabled() || cfg.Session.TTL != 30*time.Minute || cfg.Session.Capacity != 10_000 {
		t.Fatalf("session = %+v", cfg.Session)
	}
	if !cfg.Forms.BackNavigation || cfg.Forms.ButtonsInRow != 3 || cfg.Forms.CheckboxOnLeft {
		t.Fatalf("forms = %+v", cfg.Forms)
	}
	if cfg.Geocoder.BaseURL != "http://geo.local" || cfg.Geocoder.Timeout != 5*time.Second {
		t.Fatalf("geocoder = %+v", cfg.Geocoder)
	}
	if cfg.Locale.Default != "ru" || cfg.SeedFile != "seed.yaml" {
		t.Fatalf("locale=%q seed=%q", cfg.Locale.Default, cfg.SeedFile)
	}
	if cfg.CoreConfig().Logging.Level != "debug" {
		t.Fatalf("core config not shared: %+v", cfg.CoreConfig().Logging)
	}
}

func TestLoadEnvOverlay(t *testing.T) {
	t.Setenv("BOT_TOKEN", "999:env")
	t.Setenv("SESSION_BACKEND", "memory")
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "999:env" || cfg.RedisEnabled() {
		t.Fatalf("env not applied: token=%q backend=%q", cfg.Telegram.Token, cfg.Session.Backend)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]string{
		"session": strings.Replace(sample, "backend: redis", "backend: disk", 1),
		"redis":   strings.Replace(sample, "addr: redis:6379", "addr: \"\"", 1),
		"db":      strings.Replace(sample, "host: db", "host: \"\"", 1),
		"mode":    strings.Replace(sample, "run_mode: polling", "run_mode: carrier-pigeon", 1),
		"token":   strings.Replace(sample, `token: "123:abc"`, `token: ""`, 1),
		"exclude": strings.Replace(sample, `[Callback, ""]`, "[inline_query]", 1),
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: invalid config accepted", name)
		}
	}
}
