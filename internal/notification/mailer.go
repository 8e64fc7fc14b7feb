package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/projecthub/internal"
	"gopkg.in/gomail.v2"
)

type Mail struct {
	To      []string
	Subject string
	HTML    string
}

func (m Mail) Validate() error {
	if len(m.To) == 0 {
		return fmt.Errorf("mail has no recipients")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("mail has no subject")
	}
	return nil
}

type Mailer interface {
	SendMail(ctx context.Context, mail Mail) error
}

// Notifier is what domain services depend on; sending is asynchronous.
type Notifier interface {
	Notify(ctx context.Context, mail Mail)
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg internal.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPMailer) SendMail(ctx context.Context, mail Mail) error {
	if err := mail.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", mail.To...)
	m.SetHeader("Subject", mail.Subject)
	m.SetBody("text/html", mail.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer writes mails to the log instead of sending them. Used when mail is disabled.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (l *LogMailer) SendMail(_ context.Context, mail Mail) error {
	if err := mail.Validate(); err != nil {
		return err
	}
	l.logger.Info("mail (not sent, mail disabled)", "to", mail.To, "subject", mail.Subject)
	return nil
}

// NewMailer picks SMTP when mail is enabled in config.
func NewMailer(cfg internal.MailConfig, logger *slog.Logger) Mailer {
	if cfg.Enabled {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(logger)
}
