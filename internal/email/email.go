package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/studentversedubai-rgb/website-backend/internal/sl"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
	Provider() string
}

// LogSender logs emails instead of sending them. Used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "email")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email (local dev)", sl.Email(msg.To), "subject", msg.Subject, "body", msg.Text)
	return nil
}

func (s *LogSender) Provider() string { return "log" }

type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email via resend: %w", err)
	}
	return nil
}

func (s *ResendSender) Provider() string { return "resend" }

type Settings struct {
	Env          string
	Provider     string
	ResendAPIKey string
	ResendFrom   string
	AWSRegion    string
	SESFrom      string
	SendRate     float64
}

// NewSender returns a LogSender for ENV=local, otherwise the configured
// provider behind a send-rate throttle.
func NewSender(ctx context.Context, s Settings, logger *slog.Logger) (Sender, error) {
	if s.Env == "local" {
		return NewLogSender(logger), nil
	}

	var inner Sender
	switch s.Provider {
	case "ses":
		ses, err := NewSESSender(ctx, s.AWSRegion, s.SESFrom)
		if err != nil {
			return nil, err
		}
		inner = ses
	case "resend", "":
		inner = NewResendSender(s.ResendAPIKey, s.ResendFrom)
	default:
		return nil, fmt.Errorf("unknown email provider %q", s.Provider)
	}

	return NewThrottled(inner, s.SendRate), nil
}
