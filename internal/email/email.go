package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

type Service interface {
	SendCustom(ctx context.Context, to []string, subject string, htmlBody string) error
}

// SMTPConfig holds outgoing mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendCustom(ctx context.Context, to []string, subject string, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// logService writes mail to the log instead of sending it. Used when no
// SMTP host is configured.
type logService struct {
	logger zerolog.Logger
}

func NewLogService(logger zerolog.Logger) Service {
	return &logService{logger: logger}
}

func (s *logService) SendCustom(ctx context.Context, to []string, subject string, htmlBody string) error {
	s.logger.Info().
		Strs("to", to).
		Str("subject", subject).
		Msg("email suppressed, no smtp host configured")
	return nil
}
