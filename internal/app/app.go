// Package app binds the dating bot conversations to the telegram core:
// commands, callbacks, wizard turns and their rendering.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/m3rciful/datebot/core/logger"
	tg "github.com/m3rciful/datebot/core/telegram"
	"github.com/m3rciful/datebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/datebot/core/telegram/helpers"
	"github.com/m3rciful/datebot/core/telegram/middleware"
	"github.com/m3rciful/datebot/core/telegram/router"
	tgsender "github.com/m3rciful/datebot/core/telegram/sender"
	"github.com/m3rciful/datebot/core/telegram/state"
	"github.com/m3rciful/datebot/internal/config"
	"github.com/m3rciful/datebot/internal/forms"
	"github.com/m3rciful/datebot/internal/storage/postgres"
	"github.com/m3rciful/datebot/internal/texts"
	"github.com/m3rciful/datebot/internal/wizard"

	tele "gopkg.in/telebot.v4"
)

const component = "app"

// Wizard names stored in the session.
const (
	wizardRegistration = "registration"
	wizardSearch       = "search"
)

// Callback keys.
const (
	cbSource        = "src"
	cbSourcesOK     = "srcok"
	cbFilter        = "flt"
	cbVote          = "vote"
	checklistPrefix = cbSource
)

// Profiles reads and writes registered profiles.
type Profiles interface {
	wizard.ProfileStore
	Get(ctx context.Context, userID int64) (*postgres.Card, error)
	IsRegistered(ctx context.Context, userID int64) (bool, error)
}

// Votes serves posts and records votes.
type Votes interface {
	NextPost(ctx context.Context, userID int64) (*postgres.Post, error)
	RecordVote(ctx context.Context, userID, postID int64, value int) error
	SourceNames(ctx context.Context, ids []int64) (map[int64]string, error)
	Stats(ctx context.Context) (postgres.Stats, error)
}

// Deps are the collaborators of App. Geocoder may be nil.
type Deps struct {
	Config   *config.Config
	Texts    *texts.Catalog
	Sessions state.Store
	Profiles Profiles
	Votes    Votes
	Matcher  wizard.Matcher
	Geocoder wizard.Geocoder
	// Closers run in order when the app closes.
	Closers []func() error
}

// App is the dating bot.
type App struct {
	cfg      *config.Config
	texts    *texts.Catalog
	kw       forms.Keywords
	sessions *state.Manager
	profiles Profiles
	votes    Votes

	registration *wizard.Registration
	search       *wizard.Search

	bot     atomic.Pointer[tele.Bot]
	closers []func() error
}

// New validates deps and builds the app.
func New(d Deps) (*App, error) {
	switch {
	case d.Config == nil:
		return nil, errors.New("app: nil config")
	case d.Texts == nil:
		return nil, errors.New("app: nil texts")
	case d.Sessions == nil || d.Profiles == nil || d.Votes == nil || d.Matcher == nil:
		return nil, errors.New("app: storage dependencies are required")
	}
	kw := forms.KeywordsFrom(d.Texts)
	a := &App{
		cfg:      d.Config,
		texts:    d.Texts,
		kw:       kw,
		sessions: state.NewManager(d.Sessions),
		profiles: d.Profiles,
		votes:    d.Votes,
		search:   wizard.NewSearch(d.Matcher, kw),
		closers:  d.Closers,
	}
	a.registration = wizard.NewRegistration(d.Profiles, d.Geocoder, a.importPhotos, kw)
	a.sessions.RegisterHandler(wizardRegistration, a.registrationTurn)
	a.sessions.RegisterHandler(wizardSearch, a.searchTurn)
	return a, nil
}

// Close releases the collaborators handed over in Deps.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if c != nil {
			errs = append(errs, c())
		}
	}
	return errors.Join(errs...)
}

// Registry builds the command and callback registry.
func (a *App) Registry() (*tg.Registry, error) {
	reg := tg.NewRegistry()
	registered := middleware.Guard(a.isRegistered, a.notRegistered)

	cmds := map[string]commands.Command{
		"/start":   {Handler: a.onStart, Description: a.t("commands", "start")},
		"/search":  {Handler: a.onSearch, Description: a.t("commands", "search"), Guards: []tele.MiddlewareFunc{registered}},
		"/profile": {Handler: a.onProfile, Description: a.t("commands", "profile")},
		"/post":    {Handler: a.onPost, Description: a.t("commands", "post")},
		"/cancel":  {Handler: a.onCancel, Description: a.t("commands", "cancel")},
		"/stats":   {Handler: a.onStats, Description: a.t("commands", "stats"), AdminOnly: true},
	}
	for name, cmd := range cmds {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			return nil, err
		}
	}

	inSearch := middleware.InWizard(a.sessions, wizardSearch)
	cbs := map[string]tele.HandlerFunc{
		cbSource:    inSearch(a.onSourceToggle),
		cbSourcesOK: inSearch(a.onSourcesConfirm),
		cbFilter:    inSearch(a.onFilterToggle),
		cbVote:      a.onVote,
	}
	for key, h := range cbs {
		if err := reg.RegisterCallback(key, h); err != nil {
			return nil, err
		}
	}
	reg.SetCallbackNotFound(a.UnknownCallback())
	return reg, nil
}

// TelegramRunOptions wires middlewares, routes and lifecycle hooks.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg, err := a.Registry()
	if err != nil {
		return tg.RunOptions{}, err
	}
	core := a.cfg.CoreConfig()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       core.Telegram.AdminID,
		OnAdminReject: a.adminOnly,
	})
	routes = append(routes, router.CallbackRoute(reg))
	routes = append(routes, router.MessageRoutes(a.sessions, reg, router.FallbackOptions(a))...)

	return tg.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(core, a.busy),
		Routes:      routes,
		DispatcherOptions: tgsender.Options{
			MaxRetries:   2,
			RetryBackoff: time.Second,
		},
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.bot.Store(rt.Bot)
			logger.Info(ctx, component, "wired",
				slog.String("locale", a.texts.Language()),
				slog.String("session_backend", a.cfg.Session.Backend),
				slog.Bool("back_navigation", a.cfg.Forms.BackNavigation),
			)
			return nil
		},
		OnStop: func(context.Context, tg.Runtime) error {
			a.bot.Store(nil)
			return nil
		},
	}, nil
}

// UnknownText answers text outside any conversation.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, a.t("messages", "unknown"))
	}
}

// UnexpectedMedia answers photos and locations outside any conversation.
func (a *App) UnexpectedMedia() tele.HandlerFunc {
	return a.UnknownText()
}

// UnknownCallback acknowledges taps on buttons nobody owns.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error { return c.Respond() }
}

func (a *App) busy(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: a.t("messages", "busy")})
	}
	return tghelpers.SendText(c, a.t("messages", "busy"))
}

func (a *App) adminOnly(c tele.Context) error {
	return tghelpers.SendText(c, a.t("messages", "admin_only"))
}

func (a *App) notRegistered(c tele.Context) error {
	return tghelpers.SendText(c, a.t("messages", "not_registered"), keyboardRemoved())
}

func (a *App) isRegistered(c tele.Context) bool {
	ok, err := a.profiles.IsRegistered(tghelpers.BuildContext(c), tghelpers.UserID(c))
	if err != nil {
		logger.Error(tghelpers.BuildContext(c), component, "profile.registered",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return false
	}
	return ok
}

// fail tells the user something broke and hands err to the handler summary.
func (a *App) fail(c tele.Context, err error) error {
	_ = tghelpers.SendText(c, a.t("messages", "error"))
	return err
}

func (a *App) t(domain, key string) string {
	return a.texts.Resolve(domain, key)
}

// importPhotos returns the file ids of the account profile photos.
func (a *App) importPhotos(ctx context.Context, userID int64) ([]string, error) {
	bot := a.bot.Load()
	if bot == nil {
		return nil, nil
	}
	photos, err := bot.ProfilePhotosOf(&tele.User{ID: userID})
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(photos))
	for _, p := range photos {
		if p.FileID != "" {
			refs = append(refs, p.FileID)
		}
	}
	logger.Debug(ctx, component, "photos.import", slog.Int("count", len(refs)))
	return refs, nil
}
