package config

// Config is the full on-disk configuration. All duration fields are Go
// duration strings (e.g. "500ms", "10s", "5m").
type Config struct {
	Telegram      TelegramConfig      `json:"telegram"`
	Logging       LoggingConfig       `json:"logging"`
	Storage       StorageConfig       `json:"storage"`
	Dispatcher    DispatcherConfig    `json:"dispatcher"`
	Notifications NotificationsConfig `json:"notifications"`
	Trends        TrendsConfig        `json:"trends,omitempty"`
	Platforms     PlatformsConfig     `json:"platforms,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// OwnerUserIDs may use bot admin commands.
	OwnerUserIDs []int64 `json:"owner_user_ids,omitempty"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type StorageConfig struct {
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// DispatcherConfig controls the scheduled-post scan loop.
//
// Defaults (when fields are omitted/zero):
//   - interval: "5m"
//   - batch_size: 10
//   - max_concurrent: 4
//   - publish_timeout: "2m"
type DispatcherConfig struct {
	Interval       string `json:"interval,omitempty"`
	BatchSize      int    `json:"batch_size,omitempty"`
	MaxConcurrent  int    `json:"max_concurrent,omitempty"`
	PublishTimeout string `json:"publish_timeout,omitempty"`
}

// NotificationsConfig controls the recurring category broadcasts.
//
// Times maps a category name to a daily HH:MM trigger; omitted
// categories keep the built-in defaults (motivation 08:00, idea 09:00,
// trends 10:00, jobs 11:00, assets 12:00). Reminders run on their own
// two-hour cadence inside [ReminderFrom, ReminderTo].
type NotificationsConfig struct {
	Enabled       bool              `json:"enabled"`
	Timezone      string            `json:"timezone,omitempty"`
	Times         map[string]string `json:"times,omitempty"`
	ReminderFrom  int               `json:"reminder_from,omitempty"` // default 8
	ReminderTo    int               `json:"reminder_to,omitempty"`   // default 22
	RatePerSec    int               `json:"rate_per_sec,omitempty"`
	MaxConcurrent int               `json:"max_concurrent,omitempty"`
	SendTimeout   string            `json:"send_timeout,omitempty"`
}

type TrendsConfig struct {
	Enabled bool `json:"enabled"`
	// WarmupOnStart refreshes both feeds right after boot instead of
	// waiting for the first periodic refresh.
	WarmupOnStart bool `json:"warmup_on_start,omitempty"`
}

// PlatformsConfig declares where publishes go. Only the Telegram
// channel publisher ships in-tree; other platforms are registered by
// the embedding process.
type PlatformsConfig struct {
	TelegramChannel TelegramChannelConfig `json:"telegram_channel,omitempty"`
}

type TelegramChannelConfig struct {
	Enabled bool `json:"enabled"`
	// ChatID is the channel's numeric id (-100...).
	ChatID int64 `json:"chat_id,omitempty"`
	// Username (without @) makes permalinks public.
	Username string `json:"username,omitempty"`
}
