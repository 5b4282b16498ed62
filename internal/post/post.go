// Package post defines the scheduled-post model, its lifecycle, and the
// store contract the dispatcher and the authoring front end share.
package post

import (
	"context"
	"errors"
	"time"

	"artbot/internal/platform"
)

// Status is the lifecycle state of a scheduled post.
//
// Exactly one status holds at any time. pending is the only state the
// dispatcher picks up; posted, failed and cancelled are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPosted    Status = "posted"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further automatic transition may occur.
func (s Status) Terminal() bool {
	return s == StatusPosted || s == StatusFailed || s == StatusCancelled
}

// ScheduledPost is one user-authored post waiting for its publish time.
//
// Invariants (enforced by the store):
//   - PostedAt is set iff Status == posted.
//   - ErrorMessage is set only when Status == failed.
//   - Only status fields are writable once the post exists; content is
//     editable by the owner while pending.
type ScheduledPost struct {
	ID          int64
	UserID      int64
	Platform    platform.Platform
	Content     string // primary language
	ContentAlt  string // optional translated variant, preferred for publishing
	ScheduledAt time.Time
	Status      Status
	ErrorMsg    string
	CreatedAt   time.Time
	PostedAt    time.Time // zero unless posted
}

// PublishText returns the content variant handed to a publisher: the
// translated variant when present, otherwise the primary.
func (p *ScheduledPost) PublishText() string {
	if p.ContentAlt != "" {
		return p.ContentAlt
	}
	return p.Content
}

// HistoryEntry is the append-only record of a successful publish.
type HistoryEntry struct {
	ID       int64
	UserID   int64
	Platform platform.Platform
	Content  string
	URL      string
	PostedAt time.Time
}

var (
	// ErrScheduledInPast rejects creation with a non-future publish time.
	ErrScheduledInPast = errors.New("scheduled time is in the past")
	// ErrNotFound is returned for unknown ids or owner mismatches.
	ErrNotFound = errors.New("post not found")
)

// Store is the persistence contract for scheduled posts.
//
// MarkPosted and MarkFailed are conditional: they transition the row
// only while its status is still pending and report whether the
// transition happened. A false result means another writer (typically
// an owner cancel) got there first and the row must be left alone.
type Store interface {
	// Insert persists a new pending post and returns its id.
	// The scheduled time must be in the future at creation time.
	Insert(ctx context.Context, p *ScheduledPost) (int64, error)

	// ListDue returns pending posts with scheduled_at <= now, ordered by
	// scheduled_at ascending, at most limit rows.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*ScheduledPost, error)

	// ListPending returns the owner's pending posts, soonest first.
	ListPending(ctx context.Context, userID int64) ([]*ScheduledPost, error)

	// MarkPosted transitions pending -> posted and stamps posted_at.
	MarkPosted(ctx context.Context, id int64, postedAt time.Time) (bool, error)

	// MarkFailed transitions pending -> failed and records the error text.
	MarkFailed(ctx context.Context, id int64, errMsg string) (bool, error)

	// Cancel transitions pending -> cancelled, owner-scoped.
	Cancel(ctx context.Context, id, userID int64) (bool, error)

	// EditContent replaces the primary content while pending, owner-scoped.
	EditContent(ctx context.Context, id, userID int64, text string) (bool, error)

	// AppendHistory records a successful publish. Never updated or deleted.
	AppendHistory(ctx context.Context, e HistoryEntry) error

	// History returns the user's publish history, newest first.
	History(ctx context.Context, userID int64, limit int) ([]HistoryEntry, error)
}
