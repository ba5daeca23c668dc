package stockmon

import (
	"time"

	"stockmon/lib/notify"
)

type ProductConfig struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	// class token of the shop's buy button, fed to the classifier
	Selector      string `json:"selector"`
	PriceSelector string `json:"price_selector"`
}

type Config struct {
	StateFile      string                `json:"state_file"`
	LogFile        string                `json:"log_file"`
	DelaySeconds   int                   `json:"delay_seconds"`
	TimeoutSeconds int                   `json:"timeout_seconds"`
	Products       []ProductConfig       `json:"products"`
	Telegram       notify.TelegramConfig `json:"telegram"`
	Smtp           notify.SmtpConfig     `json:"smtp"`
}

func (c Config) StatePath() string {
	if c.StateFile == "" {
		return "stock_state.json"
	}
	return c.StateFile
}

func (c Config) LogPath() string {
	if c.LogFile == "" {
		return "stock_monitor.log"
	}
	return c.LogFile
}

// Delay is the fixed pause between two products in the same run.
func (c Config) Delay() time.Duration {
	if c.DelaySeconds <= 0 {
		return time.Second * 2
	}
	return time.Duration(c.DelaySeconds) * time.Second
}

func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return time.Second * 30
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
