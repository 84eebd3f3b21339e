package email

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// maxRecipients is Postmark's limit for a single message.
const maxRecipients = 50

// EmailSender represents an interface for sending emails.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   []string `json:"send_to"`       // Email addresses of the recipients
	Subject  string   `json:"subject"`       // Subject of the email
	BodyHTML string   `json:"body_html"`     // HTML body of the email
	Tag      string   `json:"tag,omitempty"` // Optional
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks recipients, subject and body.
func (p SendEmailParams) Validate() error {
	if len(p.SendTo) == 0 {
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	}
	if len(p.SendTo) > maxRecipients {
		return fmt.Errorf("%w: SendTo accepts at most %d recipients", ErrInvalidParams, maxRecipients)
	}
	for _, to := range p.SendTo {
		if !emailRegex.MatchString(strings.TrimSpace(to)) {
			return fmt.Errorf("%w: SendTo must contain valid email addresses, got %q", ErrInvalidParams, to)
		}
	}
	if strings.TrimSpace(p.Subject) == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	}
	if strings.TrimSpace(p.BodyHTML) == "" {
		return fmt.Errorf("%w: BodyHTML is required", ErrInvalidParams)
	}
	return nil
}
