package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"artbot/internal/prefs"
)

// colFor maps a category to its settings column. The switch keeps SQL
// assembly closed over the known set.
func colFor(c prefs.Category) (string, error) {
	switch c {
	case prefs.Motivation:
		return "motivation", nil
	case prefs.Idea:
		return "idea", nil
	case prefs.Trends:
		return "trends", nil
	case prefs.Jobs:
		return "jobs", nil
	case prefs.Assets:
		return "assets", nil
	case prefs.Reminders:
		return "reminders", nil
	default:
		return "", fmt.Errorf("%w: %q", prefs.ErrUnknownCategory, c)
	}
}

func (s *Store) Get(ctx context.Context, userID int64) (prefs.Settings, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT motivation, idea, trends, jobs, assets, reminders
		 FROM notification_settings WHERE user_id = ?`, userID)

	var motivation, idea, trendsOn, jobs, assets, reminders bool
	err := row.Scan(&motivation, &idea, &trendsOn, &jobs, &assets, &reminders)
	if errors.Is(err, sql.ErrNoRows) {
		// No row: the opt-out model treats everything as enabled.
		return prefs.DefaultSettings(userID), nil
	}
	if err != nil {
		return prefs.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return prefs.Settings{
		UserID: userID,
		Enabled: map[prefs.Category]bool{
			prefs.Motivation: motivation,
			prefs.Idea:       idea,
			prefs.Trends:     trendsOn,
			prefs.Jobs:       jobs,
			prefs.Assets:     assets,
			prefs.Reminders:  reminders,
		},
	}, nil
}

// Toggle lazily creates the defaults row, flips one flag, and returns
// the new value.
func (s *Store) Toggle(ctx context.Context, userID int64, c prefs.Category) (bool, error) {
	col, err := colFor(c)
	if err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("toggle settings: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO notification_settings (user_id, created_at) VALUES (?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, toMilli(s.now()),
	); err != nil {
		return false, fmt.Errorf("init settings row: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE notification_settings SET `+col+` = 1 - `+col+` WHERE user_id = ?`,
		userID,
	); err != nil {
		return false, fmt.Errorf("toggle %s: %w", col, err)
	}

	var v bool
	if err := tx.QueryRowContext(ctx,
		`SELECT `+col+` FROM notification_settings WHERE user_id = ?`, userID,
	).Scan(&v); err != nil {
		return false, fmt.Errorf("read toggled %s: %w", col, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("toggle settings: %w", err)
	}
	return v, nil
}

// ListOptedIn returns users whose stored row enables the category.
// Users without a row have never opened notification settings and are
// not broadcast to.
func (s *Store) ListOptedIn(ctx context.Context, c prefs.Category) ([]int64, error) {
	col, err := colFor(c)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM notification_settings WHERE `+col+` = 1 ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list opted-in: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
