package service

import (
	"context"
	"fmt"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/wneessen/go-mail"
)

type MailMessage struct {
	From     string
	Password string
	To       string
	Subject  string
	Body     string
}

type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// SMTPMailer delivers over STARTTLS. Sender credentials come with each
// message so one server can send on behalf of several HR accounts.
type SMTPMailer struct {
	Host string
	Port int
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{Host: cfg.SMTPHost, Port: cfg.SMTPPort}
}

func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	message := mail.NewMsg()
	if err := message.From(msg.From); err != nil {
		return fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	if err := message.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextPlain, msg.Body)

	client, err := mail.NewClient(m.Host,
		mail.WithPort(m.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(msg.From),
		mail.WithPassword(msg.Password),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}
