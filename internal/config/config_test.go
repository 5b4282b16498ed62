package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const sampleYAML = `
telegram:
  token: "123:abc"
  poll_timeout: "10s"
logging:
  level: debug
  console: true
storage:
  path: ./data/artbot.db
  busy_timeout: "5s"
dispatcher:
  interval: "5m"
  batch_size: 10
notifications:
  enabled: true
  timezone: "Europe/Moscow"
  times:
    motivation: "08:00"
    trends: "10:30"
trends:
  enabled: true
  warmup_on_start: true
platforms:
  telegram_channel:
    enabled: true
    chat_id: -1001234567890
    username: artdrop
`

func TestParseYAML(t *testing.T) {
	m := NewManager(writeFile(t, "config.yaml", sampleYAML))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Dispatcher.Interval != "5m" || cfg.Dispatcher.BatchSize != 10 {
		t.Errorf("dispatcher = %+v", cfg.Dispatcher)
	}
	if cfg.Notifications.Times["trends"] != "10:30" {
		t.Errorf("times = %v", cfg.Notifications.Times)
	}
	if !cfg.Platforms.TelegramChannel.Enabled || cfg.Platforms.TelegramChannel.ChatID != -1001234567890 {
		t.Errorf("channel = %+v", cfg.Platforms.TelegramChannel)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if m.Get() != cfg {
		t.Error("Get did not return the committed config")
	}
}

func TestParseJSON(t *testing.T) {
	body := `{"telegram":{"token":"t"},"logging":{"level":"info","console":true,"file":{"enabled":false,"path":""}},"storage":{"path":"a.db"},"dispatcher":{},"notifications":{"enabled":false}}`
	m := NewManager(writeFile(t, "config.json", body))
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	body := sampleYAML + "\nsomething_new: 1\n"
	m := NewManager(writeFile(t, "config.yaml", body))
	if _, err := m.Load(); err == nil {
		t.Fatal("unknown top-level key accepted")
	}
}

func TestParseRejectsTrailingJSON(t *testing.T) {
	body := `{"telegram":{"token":"t"},"logging":{"level":"info","console":true,"file":{"enabled":false,"path":""}},"storage":{"path":"a"},"dispatcher":{},"notifications":{"enabled":false}} {}`
	m := NewManager(writeFile(t, "config.json", body))
	if _, err := m.Load(); err == nil {
		t.Fatal("trailing document accepted")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Telegram: TelegramConfig{Token: "t"},
			Storage:  StorageConfig{Path: "a.db"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"minimal ok", func(c *Config) {}, false},
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, true},
		{"missing storage path", func(c *Config) { c.Storage.Path = "" }, true},
		{"bad duration", func(c *Config) { c.Dispatcher.Interval = "five minutes" }, true},
		{"negative duration", func(c *Config) { c.Dispatcher.PublishTimeout = "-3s" }, true},
		{"bad timezone", func(c *Config) { c.Notifications.Timezone = "Mars/Olympus" }, true},
		{"inverted reminder window", func(c *Config) {
			c.Notifications.ReminderFrom = 20
			c.Notifications.ReminderTo = 8
		}, true},
		{"channel without chat id", func(c *Config) { c.Platforms.TelegramChannel.Enabled = true }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	if d, err := ParseDurationOrDefault("x", "", 5); err != nil || d != 5 {
		t.Errorf("default not applied: %v %v", d, err)
	}
	if _, err := ParseDurationField("x", "10 parsecs"); err == nil || !strings.Contains(err.Error(), "x:") {
		t.Errorf("bad duration accepted or unprefixed: %v", err)
	}
}
