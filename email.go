package main

import (
	"testing"

	"github.com/wneessen/go-mail"
)

func (email *configEmail) enabled() bool {
	if email == nil || !email.Enabled || email.SMTPHost == "" || email.From == "" || email.To == "" {
		return false
	}
	return true
}

func (*autoPost) sendNotificationEmail(cfg *configEmail, body string) error {
	if !cfg.enabled() {
		return nil
	}
	// Create mail
	message := mail.NewMsg()
	if err := message.From(cfg.From); err != nil {
		return err
	}
	if err := message.To(cfg.To); err != nil {
		return err
	}
	message.SetDate()
	message.Subject("AutoPost notification")
	message.SetBodyString(mail.TypeTextPlain, body)
	// Deliver the mail via SMTP
	port := 587
	if cfg.SMTPPort != 0 {
		port = cfg.SMTPPort
	}
	client, err := mail.NewClient(
		cfg.SMTPHost,
		mail.WithPort(port),
		mail.WithUsername(cfg.SMTPUser),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return err
	}

	// For tests, don't use auto discover
	if testing.Testing() {
		client.SetSMTPAuth(mail.SMTPAuthPlain)
	}

	return client.DialAndSend(message)
}
