// Package platform defines the target platform enumeration and the
// Publisher capability the dispatcher fans out to.
package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Platform identifies one external publishing target.
//
// The set is closed: dispatch never branches on free-form strings, it
// resolves a Publisher through the Registry keyed by this type.
type Platform string

const (
	Telegram   Platform = "telegram"
	Twitter    Platform = "twitter"
	LinkedIn   Platform = "linkedin"
	Pinterest  Platform = "pinterest"
	YouTube    Platform = "youtube"
	Instagram  Platform = "instagram"
	TikTok     Platform = "tiktok"
	Threads    Platform = "threads"
	ArtStation Platform = "artstation"
)

// All lists every known platform, in display order.
func All() []Platform {
	return []Platform{
		Telegram, Twitter, LinkedIn, Pinterest, YouTube,
		Instagram, TikTok, Threads, ArtStation,
	}
}

var ErrUnknownPlatform = errors.New("unknown platform")

// Parse maps a stored identifier to a Platform.
// It accepts the canonical lowercase form plus a few legacy display
// names ("X (Twitter)") that older rows may still carry.
func Parse(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "telegram":
		return Telegram, nil
	case "twitter", "x", "x (twitter)":
		return Twitter, nil
	case "linkedin":
		return LinkedIn, nil
	case "pinterest":
		return Pinterest, nil
	case "youtube":
		return YouTube, nil
	case "instagram":
		return Instagram, nil
	case "tiktok":
		return TikTok, nil
	case "threads":
		return Threads, nil
	case "artstation":
		return ArtStation, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
}

func (p Platform) String() string { return string(p) }

// DisplayName returns the human-facing name used in user notifications.
func (p Platform) DisplayName() string {
	switch p {
	case Telegram:
		return "Telegram"
	case Twitter:
		return "X (Twitter)"
	case LinkedIn:
		return "LinkedIn"
	case Pinterest:
		return "Pinterest"
	case YouTube:
		return "YouTube"
	case Instagram:
		return "Instagram"
	case TikTok:
		return "TikTok"
	case Threads:
		return "Threads"
	case ArtStation:
		return "ArtStation"
	default:
		return string(p)
	}
}

// Content is the payload handed to a Publisher.
type Content struct {
	Text     string
	MediaURL string // optional
}

// Result reports a completed publish.
type Result struct {
	// URL is the canonical link to the published item, empty if the
	// platform does not return one.
	URL string
}

// Publisher delivers content to one external platform.
//
// Implementations own their network timeouts; the dispatcher treats a
// timeout like any other failure.
type Publisher interface {
	Publish(ctx context.Context, c Content) (Result, error)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, c Content) (Result, error)

func (f PublisherFunc) Publish(ctx context.Context, c Content) (Result, error) { return f(ctx, c) }
