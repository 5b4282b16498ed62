package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"artbot/internal/platform"
	"artbot/internal/post"
	kit "artbot/internal/transport"
	logx "artbot/pkg/logx"
)

type Config struct {
	// Interval is the tick heartbeat. Used by the app when registering
	// the cron job; the service itself is tick-driven.
	Interval time.Duration
	// BatchSize caps how many due posts one tick processes.
	BatchSize int
	// MaxConcurrent bounds in-tick publish parallelism.
	MaxConcurrent int
	// PublishTimeout caps one publisher invocation.
	PublishTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 4
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 2 * time.Minute
	}
	return c
}

type Service struct {
	cfg      Config
	log      logx.Logger
	store    post.Store
	registry *platform.Registry
	sender   kit.Sender

	now func() time.Time
}

func New(cfg Config, store post.Store, registry *platform.Registry, sender kit.Sender, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:      cfg.withDefaults(),
		log:      log,
		store:    store,
		registry: registry,
		sender:   sender,
		now:      time.Now,
	}
}

// Interval exposes the configured heartbeat for job registration.
func (s *Service) Interval() time.Duration { return s.cfg.Interval }

// Tick runs one scan-and-dispatch pass.
//
// A store read error aborts the tick: nothing has side-effected yet and
// the next tick retries cleanly. Per-post publish errors are isolated.
func (s *Service) Tick(ctx context.Context) error {
	tick := uuid.NewString()[:8]
	log := s.log.With(logx.String("tick", tick))
	now := s.now()

	due, err := s.store.ListDue(ctx, now, s.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("list due posts: %w", err)
	}
	if len(due) == 0 {
		log.Debug("no due posts")
		return nil
	}
	log.Info("dispatching due posts", logx.Int("count", len(due)))

	var (
		wg   sync.WaitGroup
		sem  = make(chan struct{}, s.cfg.MaxConcurrent)
		mu   sync.Mutex
		done = map[post.Status]int{}
	)
	for _, p := range due {
		wg.Add(1)
		sem <- struct{}{}
		go func(p *post.ScheduledPost) {
			defer wg.Done()
			defer func() { <-sem }()
			st := s.dispatchOne(ctx, log, p)
			mu.Lock()
			done[st]++
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	log.Info("tick finished",
		logx.Int("posted", done[post.StatusPosted]),
		logx.Int("failed", done[post.StatusFailed]),
		logx.Int("left_pending", done[post.StatusPending]),
		logx.Duration("took", time.Since(now)))
	return nil
}

// dispatchOne publishes a single post and returns the status the post
// ended the tick in.
func (s *Service) dispatchOne(ctx context.Context, log logx.Logger, p *post.ScheduledPost) post.Status {
	log = log.With(logx.Int64("post", p.ID), logx.String("platform", p.Platform.String()))

	pub, err := s.registry.Resolve(p.Platform)
	if err != nil {
		// Configuration gap, not a delivery failure: leave the post
		// pending and say so once per tick.
		log.Warn("no publisher for platform, post left pending")
		return post.StatusPending
	}

	pctx, cancel := context.WithTimeout(ctx, s.cfg.PublishTimeout)
	res, perr := pub.Publish(pctx, platform.Content{Text: p.PublishText()})
	cancel()

	if perr != nil {
		return s.markFailed(ctx, log, p, perr)
	}
	return s.markPosted(ctx, log, p, res)
}

func (s *Service) markPosted(ctx context.Context, log logx.Logger, p *post.ScheduledPost, res platform.Result) post.Status {
	postedAt := s.now()
	ok, err := s.store.MarkPosted(ctx, p.ID, postedAt)
	if err != nil {
		log.Error("posted transition failed, will not retry (published externally)", logx.Err(err))
		return post.StatusPending
	}
	if !ok {
		// Lost the race against an owner cancel. The content did go out,
		// but a cancelled row must not be resurrected as posted.
		log.Warn("post no longer pending after publish, dropping result")
		return post.StatusCancelled
	}

	if err := s.store.AppendHistory(ctx, post.HistoryEntry{
		UserID:   p.UserID,
		Platform: p.Platform,
		Content:  p.PublishText(),
		URL:      res.URL,
		PostedAt: postedAt,
	}); err != nil {
		log.Error("history append failed", logx.Err(err))
	}

	s.notifyOwner(ctx, log, p, res.URL)
	log.Info("post published", logx.String("url", res.URL))
	return post.StatusPosted
}

func (s *Service) markFailed(ctx context.Context, log logx.Logger, p *post.ScheduledPost, perr error) post.Status {
	log.Warn("publish failed", logx.Err(perr))
	ok, err := s.store.MarkFailed(ctx, p.ID, perr.Error())
	if err != nil {
		log.Error("failed transition not persisted", logx.Err(err))
		return post.StatusPending
	}
	if !ok {
		log.Warn("post no longer pending, failure not recorded")
		return post.StatusCancelled
	}
	return post.StatusFailed
}

// notifyOwner tells the author their post went out. Best-effort: a
// send failure never touches the post's state.
func (s *Service) notifyOwner(ctx context.Context, log logx.Logger, p *post.ScheduledPost, url string) {
	if s.sender == nil {
		return
	}
	text := fmt.Sprintf("✅ Post published to %s!\n\n%s", p.Platform.DisplayName(), preview(p.PublishText(), 100))
	if url != "" {
		text += "\n\n" + url
	}
	_, err := s.sender.SendText(ctx, kit.ChatTarget{ChatID: p.UserID}, text, &kit.SendOptions{DisablePreview: true})
	if err != nil {
		log.Warn("owner notification failed", logx.Int64("user", p.UserID), logx.Err(err))
	}
}

func preview(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "..."
}
