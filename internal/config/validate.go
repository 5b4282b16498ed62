package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks a parsed config before it is committed. It is also
// installed as the Watch validator so a bad edit never reaches live
// services.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if _, err := ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		return fmt.Errorf("storage.path is required")
	}
	if _, err := ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("dispatcher.interval", cfg.Dispatcher.Interval); err != nil {
		return err
	}
	if _, err := ParseDurationField("dispatcher.publish_timeout", cfg.Dispatcher.PublishTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("notifications.send_timeout", cfg.Notifications.SendTimeout); err != nil {
		return err
	}
	if tz := strings.TrimSpace(cfg.Notifications.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("notifications.timezone: %w", err)
		}
	}
	from, to := cfg.Notifications.ReminderFrom, cfg.Notifications.ReminderTo
	if from != 0 || to != 0 {
		if from < 0 || from > 23 || to < 0 || to > 23 || from > to {
			return fmt.Errorf("notifications.reminder_from/reminder_to: invalid window %d-%d", from, to)
		}
	}
	if cfg.Platforms.TelegramChannel.Enabled && cfg.Platforms.TelegramChannel.ChatID == 0 {
		return fmt.Errorf("platforms.telegram_channel.chat_id is required when enabled")
	}
	return nil
}
