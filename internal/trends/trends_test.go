package trends

import (
	"context"
	"errors"
	"testing"
	"time"

	logx "artbot/pkg/logx"
)

type memCache struct {
	entries map[string][]Entry
	at      map[string]time.Time
	putErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]Entry{}, at: map[string]time.Time{}}
}

func (m *memCache) PutTrends(ctx context.Context, kind string, entries []Entry, at time.Time) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[kind] = entries
	m.at[kind] = at
	return nil
}

func (m *memCache) LatestTrends(ctx context.Context, kind string) ([]Entry, time.Time, bool, error) {
	e, ok := m.entries[kind]
	return e, m.at[kind], ok, nil
}

type fakeFetcher struct {
	entries []Entry
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, kind Kind, limit int) ([]Entry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func TestGetServesFreshCacheWithoutFetch(t *testing.T) {
	cache := newMemCache()
	f := &fakeFetcher{entries: []Entry{{Title: "new"}}}
	s := New(cache, f, logx.Nop())

	now := time.Now()
	s.now = func() time.Time { return now }
	_ = cache.PutTrends(context.Background(), string(Art), []Entry{{Title: "cached"}}, now.Add(-time.Hour))

	got, err := s.Get(context.Background(), Art, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f.calls != 0 {
		t.Fatalf("fetcher called %d times for fresh cache", f.calls)
	}
	if len(got) != 1 || got[0].Title != "cached" {
		t.Fatalf("got %+v", got)
	}
}

func TestGetRefetchesWhenStale(t *testing.T) {
	cache := newMemCache()
	f := &fakeFetcher{entries: []Entry{{Title: "fresh"}}}
	s := New(cache, f, logx.Nop())

	now := time.Now()
	s.now = func() time.Time { return now }
	// 7h old beats the 6h art TTL.
	_ = cache.PutTrends(context.Background(), string(Art), []Entry{{Title: "stale"}}, now.Add(-7*time.Hour))

	got, err := s.Get(context.Background(), Art, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f.calls != 1 {
		t.Fatalf("fetcher calls = %d, want 1", f.calls)
	}
	if got[0].Title != "fresh" {
		t.Fatalf("got %+v", got)
	}
}

func TestGetStaleFallbackWhenFetchFails(t *testing.T) {
	cache := newMemCache()
	f := &fakeFetcher{err: errors.New("upstream down")}
	s := New(cache, f, logx.Nop())

	now := time.Now()
	s.now = func() time.Time { return now }
	_ = cache.PutTrends(context.Background(), string(Music), []Entry{{Title: "old hit"}}, now.Add(-48*time.Hour))

	got, err := s.Get(context.Background(), Music, 3)
	if err != nil {
		t.Fatalf("expected stale fallback, got error %v", err)
	}
	if got[0].Title != "old hit" {
		t.Fatalf("got %+v", got)
	}
}

func TestGetUnavailableWhenEmptyAndFailing(t *testing.T) {
	s := New(newMemCache(), &fakeFetcher{err: errors.New("down")}, logx.Nop())
	if _, err := s.Get(context.Background(), Art, 5); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestMusicTTLIsLonger(t *testing.T) {
	if Art.TTL() != 6*time.Hour || Music.TTL() != 12*time.Hour {
		t.Fatalf("TTLs: art=%v music=%v", Art.TTL(), Music.TTL())
	}
}

func TestGetClipsToLimit(t *testing.T) {
	cache := newMemCache()
	s := New(cache, nil, logx.Nop())
	now := time.Now()
	s.now = func() time.Time { return now }
	_ = cache.PutTrends(context.Background(), string(Art),
		[]Entry{{Title: "a"}, {Title: "b"}, {Title: "c"}}, now)

	got, err := s.Get(context.Background(), Art, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}
