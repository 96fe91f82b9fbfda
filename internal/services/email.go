package services

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/resend/resend-go/v2"

	"github.com/switch2connect/switch2connect/internal/config"
	"github.com/switch2connect/switch2connect/internal/friendcode"
	"github.com/switch2connect/switch2connect/internal/logging"
)

// EmailService sends transactional mail through the configured provider:
// resend in production, smtp for local Mailpit, console for tests and dev.
type EmailService struct {
	cfg    *config.EmailConfig
	resend *resend.Client
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{cfg: cfg}
	if cfg.Provider == "resend" && cfg.ResendAPIKey != "" {
		s.resend = resend.NewClient(cfg.ResendAPIKey)
	}
	return s
}

// SendWelcome greets a freshly registered player with their shareable code.
func (s *EmailService) SendWelcome(ctx context.Context, to, displayName, code string) error {
	formatted, err := friendcode.Format(code)
	if err != nil {
		formatted = code
	}

	subject := "Welcome to Switch2Connect"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour account is ready. Share your friend code with other players to connect:\n\n    %s\n\nHappy gaming!\n%s\n",
		displayName, formatted, s.cfg.FromName,
	)

	return s.send(ctx, to, subject, body)
}

func (s *EmailService) send(ctx context.Context, to, subject, body string) error {
	switch s.cfg.Provider {
	case "resend":
		if s.resend == nil {
			return fmt.Errorf("resend provider selected but no API key configured")
		}
		_, err := s.resend.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
			From:    fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromAddress),
			To:      []string{to},
			Subject: subject,
			Text:    body,
		})
		if err != nil {
			return fmt.Errorf("sending via resend: %w", err)
		}
		return nil
	case "smtp":
		addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
		msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
			s.cfg.FromName, s.cfg.FromAddress, to, subject, body)
		if err := smtp.SendMail(addr, nil, s.cfg.FromAddress, []string{to}, []byte(msg)); err != nil {
			return fmt.Errorf("sending via smtp: %w", err)
		}
		return nil
	default:
		logging.Info("Email (console provider)", map[string]interface{}{
			"to":      to,
			"subject": subject,
			"body":    body,
		})
		return nil
	}
}
