package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"
)

// postmarkAPI is the subset of *postmark.Client used here.
type postmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

type postmarkClient struct {
	api    postmarkAPI
	config Config
}

// NewPostmarkClient creates a Postmark-backed email sender.
func NewPostmarkClient(cfg Config) (EmailSender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}
	return newPostmarkClient(postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken), cfg)
}

func newPostmarkClient(api postmarkAPI, cfg Config) (EmailSender, error) {
	if !emailRegex.MatchString(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}
	if cfg.ReplyTo != "" && !emailRegex.MatchString(cfg.ReplyTo) {
		return nil, fmt.Errorf("%w: ReplyTo must be a valid email address", ErrInvalidConfig)
	}
	return &postmarkClient{api: api, config: cfg}, nil
}

// SendEmail delivers one message to all recipients with a single API call.
func (c *postmarkClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := c.api.SendEmail(ctx, postmark.Email{
		From:       c.config.SenderEmail,
		ReplyTo:    c.config.ReplyTo,
		To:         strings.Join(params.SendTo, ","),
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TrackOpens: true,
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}
