package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// Mailer delivers a single outbound email. Implementations do not retry;
// callers decide whether a failed send matters.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ResendMailer sends email through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

var _ Mailer = (*ResendMailer)(nil)

// NewResendMailer constructs a mailer bound to the given sender address.
func NewResendMailer(apiKey, from string) (*ResendMailer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("resend mailer: api key is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("resend mailer: from address is required")
	}
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   strings.TrimSpace(from),
	}, nil
}

// Send delivers one message. The recipient address must be non-empty.
func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	if m == nil || m.client == nil {
		return errors.New("resend mailer: not initialised")
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("resend mailer: recipient is required")
	}

	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}

// NoopMailer drops every message. Used when no mail API key is configured.
type NoopMailer struct{}

var _ Mailer = NoopMailer{}

func (NoopMailer) Send(context.Context, string, string, string) error { return nil }
