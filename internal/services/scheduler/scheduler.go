package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "artbot/pkg/logx"
)

type Config struct {
	Timezone       string // IANA TZ, e.g. "Europe/Moscow"
	DefaultTimeout time.Duration
}

// Job is one scheduled unit of work. The context carries the per-run
// timeout; a job must treat cancellation like any other failure.
type Job func(ctx context.Context) error

type entry struct {
	name    string
	spec    string
	timeout time.Duration
	job     Job
}

// Service owns the cron instance and the registered job definitions.
// Definitions survive a restart (e.g. on timezone change via Apply).
type Service struct {
	mu sync.Mutex

	log logx.Logger
	cfg Config
	loc *time.Location

	parser cron.Parser
	c      *cron.Cron
	defs   []entry

	baseCtx context.Context
	started bool
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:    cfg,
		log:    log,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.baseCtx = ctx

	s.loc = s.loadLocationLocked()
	s.c = s.newCronLocked()
	for _, d := range s.defs {
		s.addLocked(d)
	}
	s.c.Start()
	s.log.Info("scheduler started", logx.String("tz", s.loc.String()), logx.Int("jobs", len(s.defs)))
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	if s.c != nil {
		stop := s.c.Stop()
		select {
		case <-stop.Done():
		case <-ctx.Done():
			s.log.Warn("scheduler stop timed out waiting for running jobs")
		}
		s.c = nil
	}
	s.log.Info("scheduler stopped")
}

// Apply swaps config at runtime. A timezone change restarts the cron
// instance and re-registers every definition.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldTZ := strings.TrimSpace(s.cfg.Timezone)
	s.cfg = cfg
	if !s.started || oldTZ == strings.TrimSpace(cfg.Timezone) {
		return
	}

	<-s.c.Stop().Done()
	s.loc = s.loadLocationLocked()
	s.c = s.newCronLocked()
	for _, d := range s.defs {
		s.addLocked(d)
	}
	s.c.Start()
	s.log.Info("scheduler restarted", logx.String("tz", s.loc.String()))
}

// AddCron registers a job on a raw cron spec.
func (s *Service) AddCron(name, spec string, timeout time.Duration, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.parser.Parse(spec); err != nil {
		return fmt.Errorf("cron spec %q: %w", spec, err)
	}
	d := entry{name: name, spec: spec, timeout: s.resolveTimeout(timeout), job: job}
	s.defs = append(s.defs, d)
	if s.started {
		s.addLocked(d)
	}
	return nil
}

// AddInterval registers a job that fires every `every`.
func (s *Service) AddInterval(name string, every, timeout time.Duration, job Job) error {
	if every <= 0 {
		return errors.New("interval must be positive")
	}
	return s.AddCron(name, fmt.Sprintf("@every %s", every), timeout, job)
}

// AddDaily registers a job at HH:MM in the scheduler timezone.
func (s *Service) AddDaily(name, atHHMM string, timeout time.Duration, job Job) error {
	h, m, err := parseHHMM(atHHMM)
	if err != nil {
		return err
	}
	return s.AddCron(name, fmt.Sprintf("%d %d * * *", m, h), timeout, job)
}

// AddEveryHours registers a job on an hourly stride within [fromHour,
// toHour], minute 0 (e.g. reminders on 8-22/2).
func (s *Service) AddEveryHours(name string, stride, fromHour, toHour int, timeout time.Duration, job Job) error {
	if stride <= 0 || fromHour < 0 || toHour > 23 || fromHour > toHour {
		return fmt.Errorf("invalid hourly window %d-%d/%d", fromHour, toHour, stride)
	}
	return s.AddCron(name, fmt.Sprintf("0 %d-%d/%d * * *", fromHour, toHour, stride), timeout, job)
}

func (s *Service) newCronLocked() *cron.Cron {
	clog := cronLogger{log: s.log}
	return cron.New(
		cron.WithParser(s.parser),
		cron.WithLocation(s.loc),
		// A tick still in flight suppresses the next one for that job.
		cron.WithChain(cron.SkipIfStillRunning(clog), cron.Recover(clog)),
	)
}

func (s *Service) addLocked(d entry) {
	_, err := s.c.AddFunc(d.spec, func() { s.run(d) })
	if err != nil {
		// Specs are validated at registration; this is unreachable unless
		// the parser config drifts.
		s.log.Error("cron registration failed", logx.String("job", d.name), logx.Err(err))
	}
}

func (s *Service) run(d entry) {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	var cancel context.CancelFunc
	if d.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	err := d.job(ctx)
	if err != nil {
		s.log.Warn("job failed", logx.String("job", d.name), logx.Duration("took", time.Since(start)), logx.Err(err))
		return
	}
	s.log.Debug("job ok", logx.String("job", d.name), logx.Duration("took", time.Since(start)))
}

func (s *Service) resolveTimeout(t time.Duration) time.Duration {
	if t > 0 {
		return t
	}
	return s.cfg.DefaultTimeout
}

func (s *Service) loadLocationLocked() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone, falling back to Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

func parseHHMM(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}

// cronLogger bridges robfig/cron's logger to logx.
type cronLogger struct{ log logx.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.log.Debug("cron: "+msg, kvFields(kv)...)
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.log.Warn("cron: "+msg, append(kvFields(kv), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	fields := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		fields = append(fields, logx.Any(k, kv[i+1]))
	}
	return fields
}
