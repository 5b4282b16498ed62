package platform

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{"telegram", Telegram, false},
		{"Telegram", Telegram, false},
		{"  X (Twitter) ", Twitter, false},
		{"x", Twitter, false},
		{"artstation", ArtStation, false},
		{"myspace", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.wantErr {
			if !errors.Is(err, ErrUnknownPlatform) {
				t.Errorf("Parse(%q): expected ErrUnknownPlatform, got %v", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Resolve(Telegram); !errors.Is(err, ErrNoPublisher) {
		t.Fatalf("empty registry: expected ErrNoPublisher, got %v", err)
	}

	pub := PublisherFunc(func(ctx context.Context, c Content) (Result, error) {
		return Result{URL: "https://t.me/c/1/1"}, nil
	})
	r.Register(Telegram, pub)

	got, err := r.Resolve(Telegram)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	res, err := got.Publish(context.Background(), Content{Text: "hi"})
	if err != nil || res.URL == "" {
		t.Fatalf("Publish = %+v, %v", res, err)
	}

	r.Unregister(Telegram)
	if _, err := r.Resolve(Telegram); !errors.Is(err, ErrNoPublisher) {
		t.Fatalf("after Unregister: expected ErrNoPublisher, got %v", err)
	}
}

func TestRegisteredSorted(t *testing.T) {
	r := NewRegistry()
	nop := PublisherFunc(func(ctx context.Context, c Content) (Result, error) { return Result{}, nil })
	r.Register(Twitter, nop)
	r.Register(ArtStation, nop)
	r.Register(Telegram, nop)

	got := r.Registered()
	if len(got) != 3 {
		t.Fatalf("Registered: got %d entries", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("Registered not sorted: %v", got)
		}
	}
}

func TestTrimToProfile(t *testing.T) {
	long := strings.Repeat("я", 300)
	got := TrimToProfile(Twitter, long)
	if rl := len([]rune(got)); rl != 280 {
		t.Fatalf("trimmed rune length = %d, want 280", rl)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got[len(got)-8:])
	}
	if s := TrimToProfile(Twitter, "short"); s != "short" {
		t.Fatalf("short text must pass through, got %q", s)
	}
}
