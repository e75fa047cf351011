package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

type Service interface {
	SendWelcome(ctx context.Context, to, name, username string) error
	SendPasswordChanged(ctx context.Context, to, name string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether an SMTP host is configured.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// dialer is the part of gomail.Dialer the service uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	from   string
	dialer dialer
}

// NewService returns an SMTP backed sender, or a no-op sender when no host
// is configured.
func NewService(cfg Config) Service {
	if !cfg.Enabled() {
		return noopService{}
	}
	return &smtpService{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpService) SendWelcome(ctx context.Context, to, name, username string) error {
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>An account has been created for you on the hospital management system.</p>"+
			"<p>Username: <strong>%s</strong></p><p>Please change your password after your first login.</p>",
		name, username,
	)
	return s.send(ctx, to, "Welcome to the Hospital Management System", body)
}

func (s *smtpService) SendPasswordChanged(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your password was changed. If this was not you, contact the administrator.</p>",
		name,
	)
	return s.send(ctx, to, "Your password was changed", body)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Debug().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

type noopService struct{}

func (noopService) SendWelcome(ctx context.Context, to, name, username string) error {
	log.Debug().Str("to", to).Msg("SMTP disabled, skipping welcome email")
	return nil
}

func (noopService) SendPasswordChanged(ctx context.Context, to, name string) error {
	log.Debug().Str("to", to).Msg("SMTP disabled, skipping password notice")
	return nil
}
