// Package mailer отправляет письма со ссылкой сброса пароля.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/lib/smtp"
	"github.com/magabrotheeeer/storefront/internal/models"
)

const resetSubject = "Reset your password"

// Service собирает письмо и отправляет его через SMTP транспорт.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendPasswordResetLink разбирает тело задачи password_reset_mail и отправляет письмо.
func (s *Service) SendPasswordResetLink(ctx context.Context, body []byte) error {
	const op = "mailer.SendPasswordResetLink"

	var message models.PasswordResetMail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.ErrorContext(ctx, "failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, err)
	}
	if message.Email == "" || message.Link == "" {
		return fmt.Errorf("%s: email and link are required", op)
	}

	name := message.Name
	if name == "" {
		name = message.Email
	}
	bodyText := fmt.Sprintf("Hello, %s!\r\n\r\n"+
		"You are receiving this email because we received a password reset request for your account.\r\n\r\n"+
		"Reset password: %s\r\n\r\n"+
		"If you did not request a password reset, no further action is required.",
		name, message.Link)

	return s.sendEmail(ctx, []string{message.Email}, resetSubject, bodyText)
}

func (s *Service) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.ErrorContext(ctx, "failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.ErrorContext(ctx, "failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.ErrorContext(ctx, "failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.ErrorContext(ctx, "failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.ErrorContext(ctx, "failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.ErrorContext(ctx, "failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.InfoContext(ctx, "email sent successfully", slog.Any("to", to))
	return nil
}
