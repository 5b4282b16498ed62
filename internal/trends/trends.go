// Package trends serves cached art/music trend snapshots to the
// notification fan-out. Parsing lives outside this module (Fetcher
// collaborator); this package owns freshness and fallback policy.
package trends

import (
	"context"
	"errors"
	"fmt"
	"time"

	logx "artbot/pkg/logx"
)

// Kind selects one trend feed.
type Kind string

const (
	Art   Kind = "artstation"
	Music Kind = "music"
)

// TTL returns how long a cached snapshot of this kind stays fresh.
func (k Kind) TTL() time.Duration {
	switch k {
	case Music:
		return 12 * time.Hour
	default:
		return 6 * time.Hour
	}
}

// Entry is one trend item. The same shape covers art pieces and tracks.
type Entry struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url,omitempty"`
	Likes  int    `json:"likes,omitempty"`
}

// Fetcher pulls a fresh snapshot from the external source.
type Fetcher interface {
	Fetch(ctx context.Context, kind Kind, limit int) ([]Entry, error)
}

// Cache persists timestamped snapshots. Latest wins; stale entries are
// kept so reads can fall back to them when refresh fails.
type Cache interface {
	PutTrends(ctx context.Context, kind string, entries []Entry, at time.Time) error
	// LatestTrends returns the newest snapshot regardless of age, with
	// its cache timestamp. ok is false when nothing is cached.
	LatestTrends(ctx context.Context, kind string) (entries []Entry, at time.Time, ok bool, err error)
}

var ErrUnavailable = errors.New("trends unavailable")

// Service answers trend reads through the cache and refreshes it on the
// schedule the app wires up (art every 6h, music every 12h).
type Service struct {
	cache   Cache
	fetcher Fetcher
	log     logx.Logger

	now func() time.Time
}

func New(cache Cache, fetcher Fetcher, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cache: cache, fetcher: fetcher, log: log, now: time.Now}
}

// Get returns up to limit entries for kind. A fresh cache entry (age
// below the kind's TTL) is served as-is; otherwise a refetch is
// attempted, and on fetch failure the stale snapshot is served instead.
func (s *Service) Get(ctx context.Context, kind Kind, limit int) ([]Entry, error) {
	entries, at, ok, err := s.cache.LatestTrends(ctx, string(kind))
	if err != nil {
		return nil, fmt.Errorf("trends cache read: %w", err)
	}
	if ok && s.now().Sub(at) < kind.TTL() {
		return clip(entries, limit), nil
	}

	fresh, ferr := s.refresh(ctx, kind, limit)
	if ferr == nil {
		return clip(fresh, limit), nil
	}
	if ok {
		// Stale beats empty.
		s.log.Warn("trend refresh failed, serving stale cache",
			logx.String("kind", string(kind)), logx.Time("cached_at", at), logx.Err(ferr))
		return clip(entries, limit), nil
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, kind, ferr)
}

// Refresh force-fetches a snapshot and caches it. Used by the periodic
// refresh jobs and the startup warm-up.
func (s *Service) Refresh(ctx context.Context, kind Kind) error {
	_, err := s.refresh(ctx, kind, fetchLimit(kind))
	return err
}

func (s *Service) refresh(ctx context.Context, kind Kind, limit int) ([]Entry, error) {
	if s.fetcher == nil {
		return nil, errors.New("no fetcher configured")
	}
	if limit < fetchLimit(kind) {
		limit = fetchLimit(kind)
	}
	entries, err := s.fetcher.Fetch(ctx, kind, limit)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.New("fetcher returned no entries")
	}
	if err := s.cache.PutTrends(ctx, string(kind), entries, s.now()); err != nil {
		// The fetched data is still good; report the cache miss and move on.
		s.log.Warn("trend cache write failed", logx.String("kind", string(kind)), logx.Err(err))
	}
	s.log.Info("trends refreshed", logx.String("kind", string(kind)), logx.Int("count", len(entries)))
	return entries, nil
}

// fetchLimit is how many entries a refresh grabs, sized so every
// consumer (fan-out digest, /trends view) is covered by one snapshot.
func fetchLimit(kind Kind) int {
	if kind == Music {
		return 30
	}
	return 20
}

func clip(entries []Entry, limit int) []Entry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
