// Package mail delivers transactional email over SMTP.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the public URL of the API, used to build the
	// verification link.
	BaseURL string
}

// SMTP sends mail through a single configured SMTP account.
type SMTP struct {
	cfg    Config
	client *gomail.Client
}

func NewSMTP(cfg Config) (*SMTP, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTP{cfg: cfg, client: client}, nil
}

// SendVerification emails the signed, time-limited verification link.
func (s *SMTP) SendVerification(ctx context.Context, to, name, token string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	link := fmt.Sprintf("%s/auth/verify?token=%s", s.cfg.BaseURL, token)

	msg.Subject("Verify your email")
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(
		"Hi %s,\n\nConfirm your email address to activate your account:\n\n%s\n\nThe link expires, so use it soon.\n", name, link))

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending verification mail: %w", err)
	}

	return nil
}
