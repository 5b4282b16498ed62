// Package app wires storage, transport, and the scheduled services
// together from one config file.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"artbot/internal/config"
	"artbot/internal/content"
	"artbot/internal/platform"
	"artbot/internal/prefs"
	"artbot/internal/services/dispatcher"
	"artbot/internal/services/fanout"
	"artbot/internal/services/scheduler"
	"artbot/internal/storage"
	"artbot/internal/transport/telegram"
	"artbot/internal/trends"
	logx "artbot/pkg/logx"
)

// Option injects the collaborators that live outside this module (AI
// backend, trend parsers, extra platform publishers).
type Option func(*App)

// WithGenerator swaps the AI content backend used by the broadcasts.
func WithGenerator(g content.Generator) Option {
	return func(a *App) { a.gen = g }
}

// WithTrendsFetcher installs the external trend source. Without one the
// trend digest serves whatever the cache already holds.
func WithTrendsFetcher(f trends.Fetcher) Option {
	return func(a *App) { a.fetcher = f }
}

// WithPublisher registers an extra platform publisher before start.
func WithPublisher(pf platform.Platform, pub platform.Publisher) Option {
	return func(a *App) { a.extraPubs[pf] = pub }
}

type App struct {
	cfgm *config.Manager

	logSvc *logx.Service
	log    logx.Logger

	store    *storage.Store
	adapter  *telegram.Adapter
	registry *platform.Registry

	gen       content.Generator
	fetcher   trends.Fetcher
	extraPubs map[platform.Platform]platform.Publisher

	trends *trends.Service
	sched  *scheduler.Service
	disp   *dispatcher.Service
	fan    *fanout.Service

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfgPath string, opts ...Option) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	a := &App{
		cfgm:      cfgm,
		logSvc:    logSvc,
		log:       log,
		gen:       content.StaticGenerator{},
		extraPubs: map[platform.Platform]platform.Publisher{},
	}
	for _, opt := range opts {
		opt(a)
	}

	busyTimeout, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, 5*time.Second)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storage.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, logSvc.Logger().With(logx.String("comp", "storage")))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.store = store

	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, logSvc.Logger().With(logx.String("comp", "telegram")))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("telegram adapter: %w", err)
	}
	a.adapter = adapter

	a.registry = platform.NewRegistry()
	if ch := cfg.Platforms.TelegramChannel; ch.Enabled {
		a.registry.Register(platform.Telegram,
			telegram.NewChannelPublisher(adapter, ch.ChatID, ch.Username))
		log.Info("telegram channel publisher enabled", logx.Int64("chat_id", ch.ChatID))
	}
	for pf, pub := range a.extraPubs {
		a.registry.Register(pf, pub)
	}

	a.trends = trends.New(store, a.fetcher, logSvc.Logger().With(logx.String("comp", "trends")))

	dispCfg, err := mapDispatcherConfig(cfg)
	if err != nil {
		return nil, err
	}
	a.disp = dispatcher.New(dispCfg, store, a.registry, adapter,
		logSvc.Logger().With(logx.String("comp", "dispatcher")))

	fanCfg, err := mapFanoutConfig(cfg)
	if err != nil {
		return nil, err
	}
	a.fan = fanout.New(fanCfg, store, a.gen, a.trends, adapter,
		logSvc.Logger().With(logx.String("comp", "fanout")))

	a.sched = scheduler.New(scheduler.Config{
		Timezone:       cfg.Notifications.Timezone,
		DefaultTimeout: 4 * time.Minute,
	}, logSvc.Logger().With(logx.String("comp", "scheduler")))

	return a, nil
}

// Store exposes the persistence layer to the command front end.
func (a *App) Store() *storage.Store { return a.store }

// Adapter exposes the transport for command handler registration.
func (a *App) Adapter() *telegram.Adapter { return a.adapter }

func (a *App) Start(ctx context.Context) error {
	cfg := a.cfgm.Get()

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.adapter.Start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("start transport: %w", err)
	}

	if err := a.registerJobs(cfg); err != nil {
		cancel()
		return err
	}
	a.sched.Start(runCtx)

	if cfg.Trends.Enabled && cfg.Trends.WarmupOnStart && a.fetcher != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.warmupTrends(runCtx)
		}()
	}

	a.cfgm.SetLogger(a.logSvc.Logger().With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, c *config.Config) error {
		return config.Validate(c)
	})
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.cfgm.Watch(runCtx)
	}()

	sub := a.cfgm.Subscribe(4)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-runCtx.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.applyConfig(newCfg)
			}
		}
	}()

	notifyReady(a.log)
	a.log.Info("started",
		logx.Duration("dispatch_interval", a.disp.Interval()),
		logx.Bool("notifications", cfg.Notifications.Enabled),
		logx.Any("publishers", a.registry.Registered()))
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	notifyStopping(a.log)
	if a.cancel != nil {
		a.cancel()
	}
	a.sched.Stop(ctx)
	_ = a.adapter.Stop(ctx)

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	err := a.store.Close()
	a.log.Info("stopped")
	_ = a.logSvc.Close()
	return err
}

// registerJobs translates the config into cron entries. Job bodies read
// live service state, so only schedule changes need a restart.
func (a *App) registerJobs(cfg *config.Config) error {
	if err := a.sched.AddInterval("dispatch.scan", a.disp.Interval(), 0, a.disp.Tick); err != nil {
		return err
	}

	if cfg.Notifications.Enabled {
		for cat, at := range categoryTimes(cfg.Notifications.Times) {
			cat := cat
			err := a.sched.AddDaily("fanout."+string(cat), at, 0, func(ctx context.Context) error {
				return a.fan.FanOut(ctx, cat)
			})
			if err != nil {
				return fmt.Errorf("schedule %s: %w", cat, err)
			}
		}

		from, to := cfg.Notifications.ReminderFrom, cfg.Notifications.ReminderTo
		if from == 0 && to == 0 {
			from, to = 8, 22
		}
		err := a.sched.AddEveryHours("fanout.reminders", 2, from, to, 0, func(ctx context.Context) error {
			return a.fan.FanOut(ctx, prefs.Reminders)
		})
		if err != nil {
			return fmt.Errorf("schedule reminders: %w", err)
		}
	}

	if cfg.Trends.Enabled && a.fetcher != nil {
		for _, kind := range []trends.Kind{trends.Art, trends.Music} {
			kind := kind
			err := a.sched.AddInterval("trends.refresh."+string(kind), kind.TTL(), 0, func(ctx context.Context) error {
				return a.trends.Refresh(ctx, kind)
			})
			if err != nil {
				return fmt.Errorf("schedule trend refresh: %w", err)
			}
		}
	}
	return nil
}

func (a *App) warmupTrends(ctx context.Context) {
	for _, kind := range []trends.Kind{trends.Art, trends.Music} {
		wctx, cancel := context.WithTimeout(ctx, time.Minute)
		err := a.trends.Refresh(wctx, kind)
		cancel()
		if err != nil {
			a.log.Warn("trend warm-up failed", logx.String("kind", string(kind)), logx.Err(err))
		}
	}
}

// applyConfig pushes a hot-reloaded config into the live services.
// Schedule and storage changes need a restart; say so instead of
// half-applying them.
func (a *App) applyConfig(cfg *config.Config) {
	a.logSvc.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	if fanCfg, err := mapFanoutConfig(cfg); err == nil {
		a.fan.Apply(fanCfg)
	}
	a.sched.Apply(scheduler.Config{
		Timezone:       cfg.Notifications.Timezone,
		DefaultTimeout: 4 * time.Minute,
	})

	a.log.Info("config applied",
		logx.String("log_level", cfg.Logging.Level),
		logx.String("timezone", cfg.Notifications.Timezone))
	a.log.Warn("storage, telegram and schedule changes take effect after restart")
}

// categoryTimes merges config overrides over the default daily slots.
func categoryTimes(overrides map[string]string) map[prefs.Category]string {
	times := map[prefs.Category]string{
		prefs.Motivation: "08:00",
		prefs.Idea:       "09:00",
		prefs.Trends:     "10:00",
		prefs.Jobs:       "11:00",
		prefs.Assets:     "12:00",
	}
	for name, at := range overrides {
		cat, err := prefs.ParseCategory(name)
		if err != nil || cat == prefs.Reminders {
			continue
		}
		times[cat] = at
	}
	return times
}

func mapDispatcherConfig(cfg *config.Config) (dispatcher.Config, error) {
	interval, err := config.ParseDurationOrDefault("dispatcher.interval", cfg.Dispatcher.Interval, 5*time.Minute)
	if err != nil {
		return dispatcher.Config{}, err
	}
	pubTimeout, err := config.ParseDurationOrDefault("dispatcher.publish_timeout", cfg.Dispatcher.PublishTimeout, 2*time.Minute)
	if err != nil {
		return dispatcher.Config{}, err
	}
	return dispatcher.Config{
		Interval:       interval,
		BatchSize:      cfg.Dispatcher.BatchSize,
		MaxConcurrent:  cfg.Dispatcher.MaxConcurrent,
		PublishTimeout: pubTimeout,
	}, nil
}

func mapFanoutConfig(cfg *config.Config) (fanout.Config, error) {
	sendTimeout, err := config.ParseDurationOrDefault("notifications.send_timeout", cfg.Notifications.SendTimeout, 10*time.Second)
	if err != nil {
		return fanout.Config{}, err
	}
	return fanout.Config{
		RatePerSec:    cfg.Notifications.RatePerSec,
		MaxConcurrent: cfg.Notifications.MaxConcurrent,
		SendTimeout:   sendTimeout,
	}, nil
}
