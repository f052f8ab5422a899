package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/studentversedubai-rgb/website-backend/internal/metrics"
)

var codeHTML = template.Must(template.New("otp").Parse(`<p>Your {{.Brand}} verification code is:</p>
<h2>{{.Code}}</h2>
<p>This code expires in <strong>{{.Minutes}} minutes</strong>.</p>
<p>If you did not request this, you can safely ignore this email.</p>
`))

// CodeMailer renders verification-code emails and hands them to a Sender.
type CodeMailer struct {
	sender Sender
	brand  string
	ttl    time.Duration
}

func NewCodeMailer(sender Sender, brand string, ttl time.Duration) *CodeMailer {
	return &CodeMailer{sender: sender, brand: brand, ttl: ttl}
}

func (m *CodeMailer) SendCode(ctx context.Context, to, code string) error {
	msg, err := m.render(to, code)
	if err != nil {
		return err
	}

	start := time.Now()
	err = m.sender.Send(ctx, msg)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.EmailSendDuration.WithLabelValues(m.sender.Provider(), status).Observe(time.Since(start).Seconds())
	return err
}

func (m *CodeMailer) render(to, code string) (Message, error) {
	minutes := int(m.ttl.Minutes())
	if minutes < 1 {
		minutes = 1
	}

	var html bytes.Buffer
	data := struct {
		Brand, Code, Minutes string
	}{m.brand, code, strconv.Itoa(minutes)}
	if err := codeHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render otp email: %w", err)
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your %s verification code", m.brand),
		Text: fmt.Sprintf("Your %s verification code is: %s\n\nThis code expires in %d minutes.\n\nIf you did not request this, please ignore this email.",
			m.brand, code, minutes),
		HTML: html.String(),
	}, nil
}
