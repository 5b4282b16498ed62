package scheduler

import (
	"testing"
	"time"

	logx "artbot/pkg/logx"
)

func TestParseHHMM(t *testing.T) {
	cases := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{"08:00", 8, 0, false},
		{"23:59", 23, 59, false},
		{" 9:30 ", 9, 30, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"noon", 0, 0, true},
		{"12", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, c := range cases {
		h, m, err := parseHHMM(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseHHMM(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseHHMM(%q): %v", c.in, err)
			continue
		}
		if h != c.h || m != c.m {
			t.Errorf("parseHHMM(%q) = %d:%d, want %d:%d", c.in, h, m, c.h, c.m)
		}
	}
}

func TestAddValidatesSpecs(t *testing.T) {
	s := New(Config{}, logx.Nop())

	if err := s.AddDaily("motivation", "08:00", 0, nil); err != nil {
		t.Fatalf("AddDaily: %v", err)
	}
	if err := s.AddInterval("dispatch", 5*time.Minute, 0, nil); err != nil {
		t.Fatalf("AddInterval: %v", err)
	}
	if err := s.AddEveryHours("reminders", 2, 8, 22, 0, nil); err != nil {
		t.Fatalf("AddEveryHours: %v", err)
	}

	if err := s.AddDaily("bad", "25:00", 0, nil); err == nil {
		t.Fatal("AddDaily accepted invalid time")
	}
	if err := s.AddInterval("bad", 0, 0, nil); err == nil {
		t.Fatal("AddInterval accepted zero interval")
	}
	if err := s.AddEveryHours("bad", 2, 22, 8, 0, nil); err == nil {
		t.Fatal("AddEveryHours accepted inverted window")
	}
	if err := s.AddCron("bad", "not a spec", 0, nil); err == nil {
		t.Fatal("AddCron accepted garbage spec")
	}
}

func TestResolveTimeoutFallsBackToDefault(t *testing.T) {
	s := New(Config{DefaultTimeout: 30 * time.Second}, logx.Nop())
	if got := s.resolveTimeout(0); got != 30*time.Second {
		t.Fatalf("resolveTimeout(0) = %v", got)
	}
	if got := s.resolveTimeout(time.Second); got != time.Second {
		t.Fatalf("resolveTimeout(1s) = %v", got)
	}
}
