// Package prefs holds per-user notification opt-ins for the recurring
// notification categories.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Category is one recurring notification stream a user can toggle.
type Category string

const (
	Motivation Category = "motivation"
	Idea       Category = "idea"
	Trends     Category = "trends"
	Jobs       Category = "jobs"
	Assets     Category = "assets"
	Reminders  Category = "reminders"
)

// Categories lists every category in broadcast order.
func Categories() []Category {
	return []Category{Motivation, Idea, Trends, Jobs, Assets, Reminders}
}

var ErrUnknownCategory = errors.New("unknown notification category")

func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "motivation":
		return Motivation, nil
	case "idea":
		return Idea, nil
	case "trends":
		return Trends, nil
	case "jobs":
		return Jobs, nil
	case "assets":
		return Assets, nil
	case "reminders":
		return Reminders, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// Settings is one user's opt-in set.
//
// Policy: a user without a stored row has every category enabled
// (opt-out model). The first toggle lazily creates the row with those
// defaults and then flips the requested flag.
type Settings struct {
	UserID  int64
	Enabled map[Category]bool
}

// DefaultSettings returns the all-enabled settings a row-less user has.
func DefaultSettings(userID int64) Settings {
	en := make(map[Category]bool, len(Categories()))
	for _, c := range Categories() {
		en[c] = true
	}
	return Settings{UserID: userID, Enabled: en}
}

// On reports whether the category is enabled, defaulting to true for
// categories missing from the map.
func (s Settings) On(c Category) bool {
	v, ok := s.Enabled[c]
	if !ok {
		return true
	}
	return v
}

// Store is the persistence contract for notification settings.
type Store interface {
	// Get returns the user's settings, or the defaults when no row exists.
	Get(ctx context.Context, userID int64) (Settings, error)

	// Toggle flips one category, lazily creating the defaults row, and
	// returns the new value.
	Toggle(ctx context.Context, userID int64, c Category) (bool, error)

	// ListOptedIn returns the ids of every user whose row enables c.
	//
	// Note: only users with a stored row are broadcast to. Row-less users
	// default to enabled for display purposes but have never interacted
	// with notification settings, so they are not part of the fan-out set.
	ListOptedIn(ctx context.Context, c Category) ([]int64, error)
}
