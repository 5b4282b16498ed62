package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"artbot/internal/platform"
	"artbot/internal/post"
	"artbot/internal/prefs"
	"artbot/internal/trends"
	logx "artbot/pkg/logx"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(Config{Path: filepath.Join(t.TempDir(), "artbot.db")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func insertPost(t *testing.T, st *Store, userID int64, in time.Duration) int64 {
	t.Helper()
	id, err := st.Insert(context.Background(), &post.ScheduledPost{
		UserID:      userID,
		Platform:    platform.Telegram,
		Content:     "hello",
		ScheduledAt: time.Now().Add(in),
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return id
}

func TestInsertRejectsPastSchedule(t *testing.T) {
	st := openTestStore(t)
	_, err := st.Insert(context.Background(), &post.ScheduledPost{
		UserID:      1,
		Platform:    platform.Telegram,
		Content:     "late",
		ScheduledAt: time.Now().Add(-time.Minute),
	})
	if !errors.Is(err, post.ErrScheduledInPast) {
		t.Fatalf("expected ErrScheduledInPast, got %v", err)
	}
}

func TestListDueSelectsOnlyDuePending(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	dueID := insertPost(t, st, 1, time.Minute)
	insertPost(t, st, 1, 48*time.Hour) // future, must never be selected

	due, err := st.ListDue(ctx, time.Now().Add(2*time.Minute), 10)
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(due) != 1 || due[0].ID != dueID {
		t.Fatalf("due = %+v", due)
	}
	if due[0].Status != post.StatusPending {
		t.Fatalf("status = %s", due[0].Status)
	}
	if due[0].Platform != platform.Telegram {
		t.Fatalf("platform = %s", due[0].Platform)
	}
}

func TestListDueOrderAndLimit(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	late := insertPost(t, st, 1, 3*time.Minute)
	early := insertPost(t, st, 1, time.Minute)
	mid := insertPost(t, st, 1, 2*time.Minute)

	due, err := st.ListDue(ctx, time.Now().Add(time.Hour), 2)
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("limit ignored: got %d rows", len(due))
	}
	if due[0].ID != early || due[1].ID != mid {
		t.Fatalf("order wrong: got %d,%d want %d,%d (late=%d)", due[0].ID, due[1].ID, early, mid, late)
	}
}

func TestMarkPostedIsOptimistic(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id := insertPost(t, st, 7, time.Minute)

	ok, err := st.MarkPosted(ctx, id, time.Now())
	if err != nil || !ok {
		t.Fatalf("MarkPosted = %v, %v", ok, err)
	}

	// Terminal: neither transition may touch the row again.
	if ok, _ := st.MarkPosted(ctx, id, time.Now()); ok {
		t.Fatal("MarkPosted succeeded twice")
	}
	if ok, _ := st.MarkFailed(ctx, id, "boom"); ok {
		t.Fatal("MarkFailed flipped a posted row")
	}
	if ok, _ := st.Cancel(ctx, id, 7); ok {
		t.Fatal("Cancel flipped a posted row")
	}
}

func TestCancelBeatsDispatch(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id := insertPost(t, st, 7, time.Minute)

	ok, err := st.Cancel(ctx, id, 7)
	if err != nil || !ok {
		t.Fatalf("Cancel = %v, %v", ok, err)
	}
	// The in-flight publish finishing later must not resurrect the row.
	if ok, _ := st.MarkPosted(ctx, id, time.Now()); ok {
		t.Fatal("MarkPosted resurrected a cancelled post")
	}
}

func TestCancelIsOwnerScoped(t *testing.T) {
	st := openTestStore(t)
	id := insertPost(t, st, 7, time.Minute)
	if ok, _ := st.Cancel(context.Background(), id, 8); ok {
		t.Fatal("Cancel by non-owner succeeded")
	}
}

func TestEditContentRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id := insertPost(t, st, 7, time.Minute)

	ok, err := st.EditContent(ctx, id, 7, "edited")
	if err != nil || !ok {
		t.Fatalf("EditContent = %v, %v", ok, err)
	}

	due, err := st.ListDue(ctx, time.Now().Add(time.Hour), 10)
	if err != nil || len(due) != 1 {
		t.Fatalf("ListDue = %+v, %v", due, err)
	}
	if due[0].Content != "edited" {
		t.Fatalf("content = %q, want the edited text", due[0].Content)
	}
	if due[0].PublishText() != "edited" {
		t.Fatalf("PublishText = %q", due[0].PublishText())
	}
}

func TestEditContentOnlyWhilePending(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id := insertPost(t, st, 7, time.Minute)
	if _, err := st.MarkFailed(ctx, id, "x"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if ok, _ := st.EditContent(ctx, id, 7, "nope"); ok {
		t.Fatal("EditContent touched a failed row")
	}
}

func TestHistoryAppendAndRead(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	err := st.AppendHistory(ctx, post.HistoryEntry{
		UserID:   5,
		Platform: platform.Telegram,
		Content:  "hello",
		URL:      "https://t.me/artdrop/1",
		PostedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}

	got, err := st.History(ctx, 5, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 1 || got[0].Platform != platform.Telegram || got[0].URL == "" {
		t.Fatalf("history = %+v", got)
	}
}

func TestToggleLazilyCreatesRow(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	// No row yet: defaults are all-enabled.
	s, err := st.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !s.On(prefs.Reminders) {
		t.Fatal("row-less user should default to enabled")
	}

	// First toggle creates the defaults row, then flips: true -> false.
	v, err := st.Toggle(ctx, 42, prefs.Reminders)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if v {
		t.Fatal("first toggle should disable (opt-out defaults)")
	}

	s, err = st.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.On(prefs.Reminders) {
		t.Fatal("reminders should be off after toggle")
	}
	if !s.On(prefs.Motivation) {
		t.Fatal("other categories must keep their defaults")
	}

	// Second toggle flips back.
	if v, _ := st.Toggle(ctx, 42, prefs.Reminders); !v {
		t.Fatal("second toggle should re-enable")
	}
}

func TestListOptedInOnlyStoredRows(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	// User 1 has a row (via toggle twice, ending enabled), user 2 has a
	// row with trends off, user 3 has no row.
	if _, err := st.Toggle(ctx, 1, prefs.Trends); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if _, err := st.Toggle(ctx, 1, prefs.Trends); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if _, err := st.Toggle(ctx, 2, prefs.Trends); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	got, err := st.ListOptedIn(ctx, prefs.Trends)
	if err != nil {
		t.Fatalf("ListOptedIn: %v", err)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("opted-in = %v, want [1]", got)
	}
}

func TestTrendsCacheLatestWins(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	if err := st.PutTrends(ctx, string(trends.Art), []trends.Entry{{Title: "old"}}, older); err != nil {
		t.Fatalf("PutTrends: %v", err)
	}
	if err := st.PutTrends(ctx, string(trends.Art), []trends.Entry{{Title: "new"}}, newer); err != nil {
		t.Fatalf("PutTrends: %v", err)
	}

	entries, at, ok, err := st.LatestTrends(ctx, string(trends.Art))
	if err != nil || !ok {
		t.Fatalf("LatestTrends = %v, %v", ok, err)
	}
	if entries[0].Title != "new" {
		t.Fatalf("latest = %+v", entries)
	}
	if at.UnixMilli() != newer.UnixMilli() {
		t.Fatalf("cached_at = %v, want %v", at, newer)
	}

	if _, _, ok, _ := st.LatestTrends(ctx, string(trends.Music)); ok {
		t.Fatal("unexpected music snapshot")
	}
}
