package telegram

import (
	"context"
	"strings"
	"testing"

	"artbot/internal/platform"
	kit "artbot/internal/transport"
)

func TestSplitTextShort(t *testing.T) {
	got := splitText("hello", 100)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("splitText = %q", got)
	}
}

func TestSplitTextPrefersNewline(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n" + strings.Repeat("b", 60)
	got := splitText(text, 80)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(got), got)
	}
	if !strings.HasPrefix(got[1], "b") {
		t.Fatalf("second chunk should start at the newline: %q", got[1])
	}
}

func TestSplitTextHardWrap(t *testing.T) {
	text := strings.Repeat("x", 250)
	got := splitText(text, 100)
	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(got))
	}
	for i, c := range got {
		if len([]rune(c)) > 100 {
			t.Fatalf("chunk %d over limit: %d runes", i, len([]rune(c)))
		}
	}
}

type fakeSender struct {
	sent   []string
	target kit.ChatTarget
}

func (f *fakeSender) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	f.sent = append(f.sent, text)
	f.target = to
	return kit.MessageRef{ChatID: to.ChatID, MessageID: 42}, nil
}

func TestChannelPublisherPermalink(t *testing.T) {
	fs := &fakeSender{}
	pub := NewChannelPublisher(fs, -1001234567890, "@artdrop")

	res, err := pub.Publish(context.Background(), platform.Content{Text: "new piece"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.URL != "https://t.me/artdrop/42" {
		t.Fatalf("URL = %q", res.URL)
	}
	if fs.target.ChatID != -1001234567890 {
		t.Fatalf("sent to %d", fs.target.ChatID)
	}
}

func TestChannelPublisherPrivatePermalink(t *testing.T) {
	fs := &fakeSender{}
	pub := NewChannelPublisher(fs, -1001234567890, "")

	res, err := pub.Publish(context.Background(), platform.Content{Text: "wip"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.URL != "https://t.me/c/1234567890/42" {
		t.Fatalf("URL = %q", res.URL)
	}
}

func TestChannelPublisherUnconfigured(t *testing.T) {
	pub := NewChannelPublisher(&fakeSender{}, 0, "")
	if _, err := pub.Publish(context.Background(), platform.Content{Text: "x"}); err == nil {
		t.Fatal("expected error for missing chat id")
	}
}
