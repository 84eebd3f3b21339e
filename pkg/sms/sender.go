package sms

import (
	"context"
	"fmt"
	"strings"
)

// Sender sends a single text message.
type Sender interface {
	SendSMS(ctx context.Context, params SendParams) error
}

// SendParams describes one outbound message. MediaURL turns it into an MMS.
type SendParams struct {
	To       string `json:"to"`
	Body     string `json:"body"`
	MediaURL string `json:"media_url,omitempty"`
}

// Validate requires a recipient and either a body or a media URL.
func (p SendParams) Validate() error {
	if strings.TrimSpace(p.To) == "" {
		return fmt.Errorf("%w: To is required", ErrInvalidParams)
	}
	if p.Body == "" && p.MediaURL == "" {
		return fmt.Errorf("%w: Body or MediaURL is required", ErrInvalidParams)
	}
	return nil
}
