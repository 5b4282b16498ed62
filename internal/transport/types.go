// Package transport defines the messaging boundary between artbot and
// its chat platform. Services depend on these types only; the telebot
// implementation lives in transport/telegram.
package transport

import "context"

// ChatTarget addresses one deliverable chat (a user DM or a channel).
type ChatTarget struct {
	ChatID   int64
	ThreadID int // telegram forum topic thread id (0 if none)
}

// MessageRef identifies a sent message, e.g. to build a permalink.
type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender delivers text to a chat target. Both the dispatcher's success
// notifications and the fan-out broadcasts go through this interface.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}

// Adapter is the full transport lifecycle: a Sender that must be
// started before use and stopped on shutdown.
type Adapter interface {
	Sender
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
