package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"artbot/internal/platform"
	kit "artbot/internal/transport"
)

// ChannelPublisher publishes posts to a Telegram channel through the
// bot transport. It is the reference platform.Publisher implementation;
// the other platforms are external HTTP adapters plugged in the same way.
type ChannelPublisher struct {
	sender   kit.Sender
	chatID   int64
	username string // public channel username, used for the permalink
}

func NewChannelPublisher(sender kit.Sender, chatID int64, username string) *ChannelPublisher {
	return &ChannelPublisher{
		sender:   sender,
		chatID:   chatID,
		username: strings.TrimPrefix(strings.TrimSpace(username), "@"),
	}
}

func (p *ChannelPublisher) Publish(ctx context.Context, c platform.Content) (platform.Result, error) {
	if p.chatID == 0 {
		return platform.Result{}, errors.New("channel chat id not configured")
	}

	text := platform.TrimToProfile(platform.Telegram, c.Text)
	if c.MediaURL != "" {
		// Media is attached as a link; Telegram renders the preview.
		text = text + "\n\n" + c.MediaURL
	}

	ref, err := p.sender.SendText(ctx, kit.ChatTarget{ChatID: p.chatID}, text, &kit.SendOptions{})
	if err != nil {
		return platform.Result{}, fmt.Errorf("telegram channel publish: %w", err)
	}
	return platform.Result{URL: p.permalink(ref)}, nil
}

func (p *ChannelPublisher) permalink(ref kit.MessageRef) string {
	if p.username != "" {
		return fmt.Sprintf("https://t.me/%s/%d", p.username, ref.MessageID)
	}
	// Private channels: t.me/c links drop the -100 chat id prefix.
	id := ref.ChatID
	if id < 0 {
		s := fmt.Sprintf("%d", -id)
		s = strings.TrimPrefix(s, "100")
		return fmt.Sprintf("https://t.me/c/%s/%d", s, ref.MessageID)
	}
	return fmt.Sprintf("https://t.me/c/%d/%d", id, ref.MessageID)
}
