package drip

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/dripfeed/pkg/email"
	"github.com/dmitrymomot/dripfeed/pkg/logger"
	"github.com/dmitrymomot/dripfeed/pkg/sms"
)

// Channel delivers one message to a list of recipients.
// Implementations do not retry; a failure is returned as is.
type Channel interface {
	Deliver(ctx context.Context, recipients []string, msg Message) error
}

// ChannelFunc adapts a plain function to Channel.
type ChannelFunc func(ctx context.Context, recipients []string, msg Message) error

func (f ChannelFunc) Deliver(ctx context.Context, recipients []string, msg Message) error {
	return f(ctx, recipients, msg)
}

const (
	maxSubjectLength = 72
	fallbackSubject  = "picture enclosed"
)

// TextChannel sends one text message per recipient. A failure stops the loop;
// recipients already served are not rolled back.
type TextChannel struct {
	sender sms.Sender
	logger *slog.Logger
}

// NewTextChannel wraps an sms.Sender.
func NewTextChannel(sender sms.Sender, log *slog.Logger) *TextChannel {
	if log == nil {
		log = slog.Default()
	}
	return &TextChannel{sender: sender, logger: log}
}

func (c *TextChannel) Deliver(ctx context.Context, recipients []string, msg Message) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}
	for i, to := range recipients {
		c.logger.DebugContext(ctx, "sending text message",
			logger.Recipient(to),
			logger.MessageID(msg.ID),
		)
		err := c.sender.SendSMS(ctx, sms.SendParams{
			To:       to,
			Body:     msg.Text,
			MediaURL: msg.MediaURL,
		})
		if err != nil {
			return fmt.Errorf("%w: recipient %d of %d: %w", ErrTransport, i+1, len(recipients), err)
		}
	}
	return nil
}

// EmailChannel sends a single email addressed to every recipient.
type EmailChannel struct {
	sender email.EmailSender
}

// NewEmailChannel wraps an email.EmailSender.
func NewEmailChannel(sender email.EmailSender) *EmailChannel {
	return &EmailChannel{sender: sender}
}

func (c *EmailChannel) Deliver(ctx context.Context, recipients []string, msg Message) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}
	err := c.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   recipients,
		Subject:  EmailSubject(msg.Text),
		BodyHTML: EmailBody(msg),
		Tag:      "drip",
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}

// EmailSubject returns text cut to 72 characters, or "picture enclosed" when text is blank.
func EmailSubject(text string) string {
	if strings.TrimSpace(text) == "" {
		text = fallbackSubject
	}
	r := []rune(text)
	if len(r) > maxSubjectLength {
		return string(r[:maxSubjectLength])
	}
	return text
}

// EmailBody renders the HTML body. Messages with media embed the image;
// messages without media fall back to the escaped text.
func EmailBody(msg Message) string {
	if msg.HasMedia() {
		return "<html><body><img src='" + html.EscapeString(msg.MediaURL) + "' /></body></html>"
	}
	return "<html><body><p>" + html.EscapeString(msg.Text) + "</p></body></html>"
}

// Channels resolves the Channel for a delivery method.
type Channels struct {
	text  Channel
	email Channel
}

// NewChannels builds the channel set from the configured senders. A nil sender
// leaves its method unconfigured; queues using it fail construction.
func NewChannels(text sms.Sender, mail email.EmailSender, log *slog.Logger) *Channels {
	c := &Channels{}
	if text != nil {
		c.text = NewTextChannel(text, log)
	}
	if mail != nil {
		c.email = NewEmailChannel(mail)
	}
	return c
}

// For returns the channel serving method.
func (c *Channels) For(method DeliveryMethod) (Channel, error) {
	var ch Channel
	switch method {
	case DeliveryText:
		ch = c.text
	case DeliveryEmail:
		ch = c.email
	default:
		return nil, ErrUnknownDeliveryMethod
	}
	if ch == nil {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotConfigured, method)
	}
	return ch, nil
}
