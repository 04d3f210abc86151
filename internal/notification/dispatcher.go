package notification

import (
	"context"
	"errors"
	"fmt"

	"relytailors-be/internal/config"
	"relytailors-be/internal/logger"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Dispatcher delivers a single rendered email. Implementations must honour
// ctx cancellation.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

var ErrNoRecipient = errors.New("notification: empty recipient")

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends through an SMTP relay.
type SMTPMailer struct {
	dialer sender
	from   string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return ErrNoRecipient
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	// gomail has no context support; give up waiting once ctx is done.
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer only logs outgoing mail. Used when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return ErrNoRecipient
	}
	logger.FromCtx(ctx).Info("email not sent, no smtp relay configured",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(htmlBody)),
	)
	return nil
}

// NewDispatcher picks the SMTP mailer when a relay host is configured.
func NewDispatcher(cfg *config.Config) Dispatcher {
	if cfg.SMTPHost == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}
