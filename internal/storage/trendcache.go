package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"artbot/internal/trends"
)

// PutTrends appends a snapshot. Older rows stay behind as the stale
// fallback; reads always pick the newest by cached_at.
func (s *Store) PutTrends(ctx context.Context, kind string, entries []trends.Entry, at time.Time) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode trends: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO trends_cache (trend_type, data, cached_at) VALUES (?,?,?)`,
		kind, string(data), toMilli(at),
	); err != nil {
		return fmt.Errorf("cache trends: %w", err)
	}
	return nil
}

func (s *Store) LatestTrends(ctx context.Context, kind string) ([]trends.Entry, time.Time, bool, error) {
	var (
		data string
		ms   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT data, cached_at FROM trends_cache
		 WHERE trend_type = ?
		 ORDER BY cached_at DESC, id DESC LIMIT 1`, kind,
	).Scan(&data, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("read trends cache: %w", err)
	}

	var entries []trends.Entry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decode trends cache: %w", err)
	}
	return entries, fromMilli(ms), true, nil
}
