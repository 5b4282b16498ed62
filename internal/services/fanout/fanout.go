package fanout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"artbot/internal/content"
	"artbot/internal/prefs"
	"artbot/internal/trends"
	kit "artbot/internal/transport"
	logx "artbot/pkg/logx"
)

type Config struct {
	// RatePerSec caps outgoing sends across the whole broadcast.
	RatePerSec int
	// MaxConcurrent bounds in-flight sends within one job.
	MaxConcurrent int
	// SendTimeout bounds each individual send call.
	SendTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.RatePerSec <= 0 {
		c.RatePerSec = 10
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 4
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
	return c
}

// Service runs one broadcast per invocation. The app schedules it via
// cron, one job per category.
type Service struct {
	mu      sync.Mutex
	cfg     Config
	limiter *rate.Limiter

	store  prefs.Store
	gen    content.Generator
	trends *trends.Service
	sender kit.Sender
	log    logx.Logger

	now func() time.Time
}

func New(cfg Config, store prefs.Store, gen content.Generator, tr *trends.Service, sender kit.Sender, log logx.Logger) *Service {
	cfg = cfg.withDefaults()
	if log.IsZero() {
		log = logx.Nop()
	}
	if gen == nil {
		gen = content.StaticGenerator{}
	}
	return &Service{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		store:   store,
		gen:     gen,
		trends:  tr,
		sender:  sender,
		log:     log,
		now:     time.Now,
	}
}

// Apply swaps the broadcast limits on config reload.
func (s *Service) Apply(cfg Config) {
	cfg = cfg.withDefaults()
	s.mu.Lock()
	s.cfg = cfg
	s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	s.mu.Unlock()
}

// FanOut broadcasts one category. The opted-in set is read first; when
// it is empty no content is generated at all.
func (s *Service) FanOut(ctx context.Context, cat prefs.Category) error {
	s.mu.Lock()
	cfg := s.cfg
	lim := s.limiter
	s.mu.Unlock()

	jobID := uuid.NewString()[:8]
	log := s.log.With(logx.String("job", jobID), logx.String("category", string(cat)))

	users, err := s.store.ListOptedIn(ctx, cat)
	if err != nil {
		return fmt.Errorf("list opted-in users: %w", err)
	}
	if len(users) == 0 {
		log.Debug("no opted-in users, skipping broadcast")
		return nil
	}

	text, err := s.compose(ctx, cat)
	if err != nil {
		return fmt.Errorf("compose %s message: %w", cat, err)
	}

	opt := &kit.SendOptions{ParseMode: "Markdown", DisablePreview: cat != prefs.Motivation}

	var (
		wg   sync.WaitGroup
		sem  = make(chan struct{}, cfg.MaxConcurrent)
		mu   sync.Mutex
		sent int
	)
	for _, uid := range users {
		if err := lim.Wait(ctx); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(uid int64) {
			defer wg.Done()
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, cfg.SendTimeout)
			defer cancel()
			_, err := s.sender.SendText(callCtx, kit.ChatTarget{ChatID: uid}, text, opt)
			if err != nil {
				// Best-effort broadcast: log and keep going.
				log.Warn("broadcast send failed", logx.Int64("user_id", uid), logx.Err(err))
				return
			}
			mu.Lock()
			sent++
			mu.Unlock()
		}(uid)
	}
	wg.Wait()

	log.Info("broadcast done", logx.Int("recipients", len(users)), logx.Int("sent", sent))
	return nil
}

// compose builds the category payload once per job.
func (s *Service) compose(ctx context.Context, cat prefs.Category) (string, error) {
	switch cat {
	case prefs.Motivation:
		text, err := s.gen.Motivation(ctx)
		if err != nil {
			s.log.Warn("motivation generation failed, using fallback", logx.Err(err))
			text = content.FallbackMotivation
		}
		return motivationMessage(text, s.artOfDay(ctx)), nil
	case prefs.Idea:
		text, err := s.gen.ProjectIdea(ctx)
		if err != nil {
			s.log.Warn("idea generation failed, using fallback", logx.Err(err))
			text = content.FallbackProjectIdea
		}
		return ideaMessage(text), nil
	case prefs.Trends:
		return s.composeTrends(ctx)
	case prefs.Jobs:
		return jobsMessage(), nil
	case prefs.Assets:
		return assetsMessage(), nil
	case prefs.Reminders:
		return reminderMessage(s.now().Hour()), nil
	default:
		return "", fmt.Errorf("%w: %q", prefs.ErrUnknownCategory, cat)
	}
}

func (s *Service) composeTrends(ctx context.Context) (string, error) {
	if s.trends == nil {
		return "", fmt.Errorf("trends service not configured")
	}
	art, artErr := s.trends.Get(ctx, trends.Art, 5)
	music, musicErr := s.trends.Get(ctx, trends.Music, 10)
	if artErr != nil && musicErr != nil {
		return "", fmt.Errorf("no trend data: art: %v; music: %v", artErr, musicErr)
	}
	if artErr != nil {
		s.log.Warn("art trends unavailable for digest", logx.Err(artErr))
	}
	if musicErr != nil {
		s.log.Warn("music trends unavailable for digest", logx.Err(musicErr))
	}
	return trendsMessage(art, music), nil
}

// artOfDay picks the top art entry for the morning message. Missing
// trend data just drops the block.
func (s *Service) artOfDay(ctx context.Context) *trends.Entry {
	if s.trends == nil {
		return nil
	}
	entries, err := s.trends.Get(ctx, trends.Art, 1)
	if err != nil || len(entries) == 0 {
		return nil
	}
	return &entries[0]
}
