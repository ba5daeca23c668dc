package notify

import (
	"context"
	"fmt"
	"time"

	"stockmon/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

type TelegramConfig struct {
	BotToken string `json:"bot_token"`
	ChatID   string `json:"chat_id"`
	// defaults to the public bot api, overridable for tests
	BaseURL string `json:"base_url"`
}

type Telegram struct {
	config TelegramConfig
	http   *resty.Client
}

func NewTelegram(config TelegramConfig) *Telegram {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.telegram.org"
	}

	client := resty.New()
	client.SetBaseURL(config.BaseURL)
	client.SetTimeout(time.Second * 10)
	telemetry.InstrumentResty(client, "notify/telegram")

	return &Telegram{config: config, http: client}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, e Event) error {
	if t.config.BotToken == "" || t.config.ChatID == "" {
		return ErrNotConfigured
	}

	res, err := t.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":    t.config.ChatID,
			"text":       e.HTMLMessage(),
			"parse_mode": "HTML",
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", t.config.BotToken))
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("telegram sendMessage: %s", res.Status())
	}
	return nil
}
