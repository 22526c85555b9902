package config

import (
	"sync"
)

type MailConfig struct {
	SMTPHost       string
	SMTPPort       int
	SenderEmail    string
	SenderPassword string
}

var (
	mailConfig *MailConfig
	mailOnce   sync.Once
)

func LoadMailConfig() *MailConfig {
	mailOnce.Do(func() {
		v := env()
		mailConfig = &MailConfig{
			SMTPHost:       v.GetString("SMTP_HOST"),
			SMTPPort:       v.GetInt("SMTP_PORT"),
			SenderEmail:    v.GetString("SENDER_EMAIL"),
			SenderPassword: v.GetString("SENDER_PASSWORD"),
		}
	})
	return mailConfig
}
