// Package app wires configuration, storage and services into one container
// shared by the HTTP API, the Telegram bot and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"agenda-rural/internal/advisor"
	"agenda-rural/internal/api"
	"agenda-rural/internal/bot"
	"agenda-rural/internal/cache"
	"agenda-rural/internal/config"
	"agenda-rural/internal/logger"
	"agenda-rural/internal/repository"
	"agenda-rural/internal/service"
)

const redisConnectTimeout = 5 * time.Second

// Container holds the long-lived services of one process.
type Container struct {
	Config config.Config
	Log    *logrus.Entry

	Store     repository.Store
	Agenda    *service.AgendaService
	Journal   *service.JournalService
	Advice    *service.AdviceService
	Digest    *service.DigestService
	Catalog   *service.CatalogService
	Scheduler *service.SchedulerService

	answers *cache.AnswerCache
}

// New opens the store, loads the agenda and connects the optional Redis
// cache and Gemini advisor. Missing optional parts are logged, not fatal.
func New(ctx context.Context, cfg config.Config, log *logrus.Entry) (*Container, error) {
	store, err := repository.Open(ctx, repository.Options{
		DatabaseURL: cfg.DatabaseURL,
		LocalPath:   cfg.LocalDBPath,
	}, logger.Component(log, "store"))
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:  cfg,
		Log:     log,
		Store:   store,
		Agenda:  service.NewAgendaService(store, logger.Component(log, "agenda"), cfg.Location),
		Journal: service.NewJournalService(store, logger.Component(log, "journal")),
		Catalog: service.NewCatalogService(),
	}
	c.Digest = service.NewDigestService(c.Agenda)
	c.Scheduler = service.NewSchedulerService(cfg.Location, logger.Component(log, "scheduler"))

	if err := c.Agenda.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	c.Advice = c.newAdviceService(ctx)
	return c, nil
}

// newAdviceService passes untyped nils so the service sees absent parts.
func (c *Container) newAdviceService(ctx context.Context) *service.AdviceService {
	log := logger.Component(c.Log, "advice")

	var adv service.Advisor
	if c.Config.GeminiAPIKey != "" {
		adv = advisor.NewGeminiClient(c.Config.GeminiAPIKey, c.Config.GeminiModel)
	} else {
		log.Warn("GEMINI_API_KEY not set, assistant disabled")
	}

	var answers service.AnswerCache
	if c.Config.RedisAddr != "" {
		connectCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()
		ac, err := cache.Connect(connectCtx, c.Config.RedisAddr, c.Config.AdviceCacheTTL)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, answers will not be cached")
		} else {
			c.answers = ac
			answers = ac
		}
	}

	return service.NewAdviceService(adv, answers, log)
}

// HTTPServer builds the JSON API over the container services.
func (c *Container) HTTPServer() *api.Server {
	return api.NewServer(api.Deps{
		Agenda:  c.Agenda,
		Journal: c.Journal,
		Advice:  c.Advice,
		Catalog: c.Catalog,
	}, logger.Component(c.Log, "http"))
}

// Bot connects to Telegram; it returns nil when no token is configured.
func (c *Container) Bot() (*bot.Bot, error) {
	if !c.Config.BotEnabled() {
		return nil, nil
	}
	b, err := bot.New(c.Config.TelegramToken, bot.Services{
		Agenda:  c.Agenda,
		Journal: c.Journal,
		Advice:  c.Advice,
		Digest:  c.Digest,
	}, logger.Component(c.Log, "bot"))
	if err != nil {
		return nil, fmt.Errorf("start bot: %w", err)
	}
	return b, nil
}

// ScheduleReload registers the periodic agenda refresh from the store.
func (c *Container) ScheduleReload() error {
	return c.Scheduler.ScheduleReload(c.Agenda, c.Config.ReloadInterval, c.Config.ReloadAt)
}

// Close releases the cache and the store.
func (c *Container) Close() error {
	var errs []error
	if c.answers != nil {
		if err := c.answers.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if err := c.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
