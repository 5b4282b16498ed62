package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"artbot/internal/platform"
	"artbot/internal/post"
)

// Insert persists a new pending post. Rejects non-future schedule times.
func (s *Store) Insert(ctx context.Context, p *post.ScheduledPost) (int64, error) {
	now := s.now()
	if !p.ScheduledAt.After(now) {
		return 0, post.ErrScheduledInPast
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scheduled_posts (user_id, platform, content, content_alt, scheduled_at, status, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		p.UserID, p.Platform.String(), p.Content, p.ContentAlt,
		toMilli(p.ScheduledAt), string(post.StatusPending), toMilli(now),
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	return res.LastInsertId()
}

const postColumns = `id, user_id, platform, content, content_alt, scheduled_at, status, error_message, created_at, COALESCE(posted_at, 0)`

func (s *Store) ListDue(ctx context.Context, now time.Time, limit int) ([]*post.ScheduledPost, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM scheduled_posts
		 WHERE status = ? AND scheduled_at <= ?
		 ORDER BY scheduled_at ASC LIMIT ?`,
		string(post.StatusPending), toMilli(now), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (s *Store) ListPending(ctx context.Context, userID int64) ([]*post.ScheduledPost, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM scheduled_posts
		 WHERE user_id = ? AND status = ?
		 ORDER BY scheduled_at ASC`,
		userID, string(post.StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("list pending posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

func scanPosts(rows *sql.Rows) ([]*post.ScheduledPost, error) {
	var out []*post.ScheduledPost
	for rows.Next() {
		var (
			p post.ScheduledPost

			plat, status                 string
			schedMS, createdMS, postedMS int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &plat, &p.Content, &p.ContentAlt,
			&schedMS, &status, &p.ErrorMsg, &createdMS, &postedMS); err != nil {
			return nil, err
		}
		pf, err := platform.Parse(plat)
		if err != nil {
			// A row with an unknown platform is a config problem, not a
			// reason to fail the whole read; surface it as parsed text.
			pf = platform.Platform(plat)
		}
		p.Platform = pf
		p.Status = post.Status(status)
		p.ScheduledAt = fromMilli(schedMS)
		p.CreatedAt = fromMilli(createdMS)
		p.PostedAt = fromMilli(postedMS)
		out = append(out, &p)
	}
	return out, rows.Err()
}

// MarkPosted is the optimistic pending -> posted transition. It reports
// false when the row was no longer pending (e.g. cancelled while the
// publish was in flight); the caller must then leave the row alone.
func (s *Store) MarkPosted(ctx context.Context, id int64, postedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_posts
		 SET status = ?, posted_at = ?, error_message = ''
		 WHERE id = ? AND status = ?`,
		string(post.StatusPosted), toMilli(postedAt), id, string(post.StatusPending),
	)
	if err != nil {
		return false, fmt.Errorf("mark posted: %w", err)
	}
	return affected(res)
}

// MarkFailed is the optimistic pending -> failed transition. failed is
// terminal: nothing retries it.
func (s *Store) MarkFailed(ctx context.Context, id int64, errMsg string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_posts
		 SET status = ?, error_message = ?, posted_at = NULL
		 WHERE id = ? AND status = ?`,
		string(post.StatusFailed), errMsg, id, string(post.StatusPending),
	)
	if err != nil {
		return false, fmt.Errorf("mark failed: %w", err)
	}
	return affected(res)
}

func (s *Store) Cancel(ctx context.Context, id, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_posts
		 SET status = ?
		 WHERE id = ? AND user_id = ? AND status = ?`,
		string(post.StatusCancelled), id, userID, string(post.StatusPending),
	)
	if err != nil {
		return false, fmt.Errorf("cancel post: %w", err)
	}
	return affected(res)
}

func (s *Store) EditContent(ctx context.Context, id, userID int64, text string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_posts
		 SET content = ?, content_alt = ''
		 WHERE id = ? AND user_id = ? AND status = ?`,
		text, id, userID, string(post.StatusPending),
	)
	if err != nil {
		return false, fmt.Errorf("edit post content: %w", err)
	}
	return affected(res)
}

func (s *Store) AppendHistory(ctx context.Context, e post.HistoryEntry) error {
	at := e.PostedAt
	if at.IsZero() {
		at = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO post_history (user_id, platform, content, post_url, posted_at)
		 VALUES (?,?,?,?,?)`,
		e.UserID, e.Platform.String(), e.Content, e.URL, toMilli(at),
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, userID int64, limit int) ([]post.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, platform, content, post_url, posted_at
		 FROM post_history WHERE user_id = ?
		 ORDER BY posted_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	var out []post.HistoryEntry
	for rows.Next() {
		var (
			e    post.HistoryEntry
			plat string
			ms   int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &plat, &e.Content, &e.URL, &ms); err != nil {
			return nil, err
		}
		e.Platform = platform.Platform(plat)
		e.PostedAt = fromMilli(ms)
		out = append(out, e)
	}
	return out, rows.Err()
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
