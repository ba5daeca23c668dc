package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
	To           string `json:"to"`
}

type Email struct {
	config SmtpConfig
}

func NewEmail(config SmtpConfig) *Email {
	if config.Server == "" {
		config.Server = "smtp.gmail.com"
	}
	if config.Port == 0 {
		config.Port = 587
	}
	return &Email{config: config}
}

func (m *Email) Name() string { return "email" }

func (m *Email) Send(_ context.Context, e Event) error {
	if m.config.EmailAddress == "" || m.config.Password == "" || m.config.To == "" {
		return ErrNotConfigured
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Stock Monitor <%s>", m.config.EmailAddress)
	mail.To = []string{m.config.To}
	mail.Subject = fmt.Sprintf("Stock Alert: %s - %s", e.Product, e.StatusLabel())
	mail.HTML = []byte(e.EmailBody())

	return mail.Send(
		fmt.Sprintf("%s:%d", m.config.Server, m.config.Port),
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
}
