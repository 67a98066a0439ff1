// Package bot wires configuration, lookups, the journal and telegram routing.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/m3rciful/lookupbot/core/bootstrap"
	"github.com/m3rciful/lookupbot/core/logger"
	coretelegram "github.com/m3rciful/lookupbot/core/telegram"
	"github.com/m3rciful/lookupbot/core/telegram/commands"
	"github.com/m3rciful/lookupbot/core/telegram/router"
	"github.com/m3rciful/lookupbot/core/telegram/ui"
	"github.com/m3rciful/lookupbot/internal/app"
	"github.com/m3rciful/lookupbot/internal/config"
	"github.com/m3rciful/lookupbot/internal/health"
	"github.com/m3rciful/lookupbot/internal/journal"
	"github.com/m3rciful/lookupbot/internal/lookup"
	"github.com/m3rciful/lookupbot/internal/menu"
)

// App is the assembled bot.
type App struct {
	cfg      *config.Config
	handlers *app.Handlers
	registry *coretelegram.Registry
	journal  *journal.Journal
	health   *health.Server
	closeRes func() error
}

// Bootstrap initializes the logger, opens the journal and assembles the App.
func Bootstrap(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bot: nil config")
	}
	var j *journal.Journal
	res, err := bootstrap.Run(bootstrap.Options{
		Config: cfg.CoreConfig(),
		Resources: []bootstrap.Resource{{
			Name: "journal",
			Open: func() (io.Closer, error) {
				var err error
				j, err = journal.Open(journal.Options{Path: cfg.Journal.Path, Location: cfg.Location()})
				return j, err
			},
		}},
	})
	if err != nil {
		return nil, err
	}

	fetcher := lookup.NewRestyFetcher(lookup.FetcherOptions{
		Timeout:   cfg.LookupTimeout(),
		UserAgent: cfg.Lookups.UserAgent,
	})
	a, err := New(cfg, fetcher, j)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	a.closeRes = res.Close
	return a, nil
}

// New assembles the App from its parts.
func New(cfg *config.Config, fetcher lookup.Fetcher, j *journal.Journal) (*App, error) {
	svc, err := lookup.NewService(fetcher, cfg.Endpoints())
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	m, err := menu.New(cfg.MenuActions(), cfg.Keyboard())
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	h, err := app.NewHandlers(m, svc, j)
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}
	reg, err := Register(app.Bind(h), m)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, handlers: h, registry: reg, journal: j}
	if cfg.Health.Enabled {
		a.health = health.New(cfg.Health.Listen, j)
	}
	return a, nil
}

// Register fills a registry: the start command, one slash command per lookup,
// and one callback per action on the menu.
func Register(b app.Bindings, m *menu.Menu) (*coretelegram.Registry, error) {
	reg := coretelegram.NewRegistry()
	var fallback ui.FallbackProvider = b

	if err := reg.RegisterCommand(menu.ActionStart.Command(), commands.Command{
		Handler:     b.StartCommand(),
		Description: menu.ActionStart.Description(),
	}); err != nil {
		return nil, fmt.Errorf("bot: register: %w", err)
	}
	for _, a := range menu.Lookups() {
		if err := reg.RegisterCommand(a.Command(), commands.Command{
			Handler:     b.LookupCommand(a),
			Description: a.Description(),
		}); err != nil {
			return nil, fmt.Errorf("bot: register: %w", err)
		}
	}

	if err := reg.RegisterCallback(string(menu.ActionStart), b.StartButton()); err != nil {
		return nil, fmt.Errorf("bot: register: %w", err)
	}
	for _, a := range m.Actions() {
		if err := reg.RegisterCallback(string(a), b.LookupButton(a)); err != nil {
			return nil, fmt.Errorf("bot: register: %w", err)
		}
	}

	reg.SetTextFallback(fallback.UnknownText())
	reg.SetCallbackNotFound(fallback.UnknownCallback())
	reg.SetCallbackNotice(app.UnsupportedNotice)
	reg.SetMessageFallback(fallback.UnknownMessage())
	return reg, nil
}

// Registry returns the command and callback tables.
func (a *App) Registry() *coretelegram.Registry { return a.registry }

// TelegramRunOptions implements the runner's TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	routes := router.TextRoutes(a.registry)
	routes = append(routes, router.CallbackRoute(a.registry))
	routes = append(routes, router.MessageRoutes(a.registry)...)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes:      routes,
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			logger.L.Info("menu ready",
				slog.String("component", "app"),
				slog.String("event", "menu"),
				slog.String("mode", string(a.handlers.Menu().Kind())),
				slog.Any("actions", a.handlers.Menu().Actions()),
			)
			if a.health != nil {
				return a.health.Start()
			}
			return nil
		},
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			var errs []error
			if a.health != nil {
				errs = append(errs, a.health.Shutdown(ctx))
			}
			errs = append(errs, a.Close())
			return errors.Join(errs...)
		},
	}, nil
}

// Close releases the journal. Later appends fail with journal.ErrClosed.
func (a *App) Close() error {
	if a.closeRes != nil {
		err := a.closeRes()
		a.closeRes = nil
		return err
	}
	if a.journal != nil {
		return a.journal.Close()
	}
	return nil
}
