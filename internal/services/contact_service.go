package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/kitzone/api/internal/notifications"
)

const maxContactMessageLen = 4000

var (
	// ErrContactInvalidInput signals a malformed contact form submission.
	ErrContactInvalidInput = errors.New("contact: invalid input")
	// ErrContactDeliveryFailed indicates the message could not be forwarded.
	ErrContactDeliveryFailed = errors.New("contact: delivery failed")
)

// ContactServiceDeps bundles collaborators required to construct the contact service.
type ContactServiceDeps struct {
	Mailer     notifications.Mailer
	StaffEmail string
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type contactService struct {
	mailer     notifications.Mailer
	staffEmail string
	sanitizer  *bluemonday.Policy
	logger     func(context.Context, string, map[string]any)
}

var _ ContactService = (*contactService)(nil)

// NewContactService wires dependencies into a concrete ContactService implementation.
func NewContactService(deps ContactServiceDeps) (ContactService, error) {
	if deps.Mailer == nil {
		return nil, errors.New("contact service: mailer is required")
	}
	if strings.TrimSpace(deps.StaffEmail) == "" {
		return nil, errors.New("contact service: staff email is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &contactService{
		mailer:     deps.Mailer,
		staffEmail: deps.StaffEmail,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger,
	}, nil
}

// Submit forwards a storefront contact message to staff. Unlike order
// notifications, delivery failures surface to the caller so the visitor
// knows the message did not get through.
func (s *contactService) Submit(ctx context.Context, cmd ContactCommand) error {
	name := strings.TrimSpace(s.sanitizer.Sanitize(cmd.Name))
	email := strings.TrimSpace(cmd.Email)
	body := strings.TrimSpace(cmd.Message)

	if name == "" {
		return fmt.Errorf("%w: name is required", ErrContactInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrContactInvalidInput)
	}
	if body == "" {
		return fmt.Errorf("%w: message is required", ErrContactInvalidInput)
	}
	if len(body) > maxContactMessageLen {
		return fmt.Errorf("%w: message too long", ErrContactInvalidInput)
	}

	subject, html := notifications.ContactMessage(name, email, body)
	if err := s.mailer.Send(ctx, s.staffEmail, subject, html); err != nil {
		s.logger(ctx, "contact.send.failed", map[string]any{
			"from":  email,
			"error": err.Error(),
		})
		return fmt.Errorf("%w: %v", ErrContactDeliveryFailed, err)
	}
	return nil
}
