package channel

import (
	"context"
	"fmt"
	"net/smtp"
)

// EmailSender delivers notifications over SMTP.
type EmailSender struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
}

// EmailConfig holds SMTP settings for the email channel.
type EmailConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
}

func NewEmailSender(cfg EmailConfig) *EmailSender {
	return &EmailSender{
		host:      cfg.Host,
		port:      cfg.Port,
		username:  cfg.Username,
		password:  cfg.Password,
		fromEmail: cfg.FromEmail,
	}
}

func (s *EmailSender) Name() string { return "email" }

// IsConfigured checks if the sender has valid SMTP configuration.
func (s *EmailSender) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

// Send builds a plain-text MIME message and submits it to the relay.
func (s *EmailSender) Send(_ context.Context, msg Message) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email channel not configured")
	}

	mime := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		msg.Recipient,
		msg.Title,
		msg.Body,
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{msg.Recipient}, mime); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
