// Command datebot runs the covote dating bot.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/m3rciful/datebot/core/bootstrap"
	corecmd "github.com/m3rciful/datebot/core/cmd"
	coredatabase "github.com/m3rciful/datebot/core/database"
	"github.com/m3rciful/datebot/core/telegram/state"
	"github.com/m3rciful/datebot/internal/app"
	"github.com/m3rciful/datebot/internal/config"
	"github.com/m3rciful/datebot/internal/geocode"
	"github.com/m3rciful/datebot/internal/storage/postgres"
	"github.com/m3rciful/datebot/internal/texts"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "DATEBOT_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: bootstrapApp,
	})
	if err != nil {
		log.Fatal(err)
	}
}

func bootstrapApp(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, errors.New("datebot: unexpected config type")
	}

	var seeders []bootstrap.Seeder
	if cfg.SeedFile != "" {
		seeder, err := postgres.LoadSeed(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		seeders = append(seeders, seeder)
	}
	var redisCfg *coredatabase.RedisConfig
	if cfg.RedisEnabled() {
		redisCfg = &cfg.Redis
	}

	infra, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
		Redis:    redisCfg,
		Seeders:  seeders,
	})
	if err != nil {
		return nil, err
	}
	closeOnErr := func(err error) (corecmd.TelegramApp, error) {
		return nil, errors.Join(err, infra.Close())
	}

	var sessions state.Store
	if infra.Redis != nil {
		sessions = state.NewRedisStore(infra.Redis, cfg.Session.TTL)
	} else if sessions, err = state.NewMemoryStore(cfg.Session.Capacity, cfg.Session.TTL); err != nil {
		return closeOnErr(err)
	}

	catalog, err := texts.Load(cfg.Locale.Default)
	if err != nil {
		return closeOnErr(err)
	}
	geocoder, err := geocode.New(cfg.Geocoder, nil)
	if err != nil {
		return closeOnErr(err)
	}
	profiles, err := postgres.NewProfileCache(postgres.NewProfileRepo(infra.DB), cfg.Session.Capacity, cfg.Search.ProfileCacheTTL)
	if err != nil {
		return closeOnErr(err)
	}

	bot, err := app.New(app.Deps{
		Config:   cfg,
		Texts:    catalog,
		Sessions: sessions,
		Profiles: profiles,
		Votes:    postgres.NewVoteRepo(infra.DB),
		Matcher:  postgres.NewMatchRepo(infra.DB, cfg.Search.Limit),
		Geocoder: geocoder,
		Closers: []func() error{
			func() error { profiles.Close(); return nil },
			infra.Close,
		},
	})
	if err != nil {
		profiles.Close()
		return closeOnErr(err)
	}
	return bot, nil
}
