package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/time/rate"
)

// messageCreator is the subset of the Twilio API service used here.
type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// TwilioClient implements Sender with the Twilio Messages API.
type TwilioClient struct {
	api     messageCreator
	from    string
	limiter *rate.Limiter
}

// NewTwilioClient validates cfg and builds a rate limited Twilio sender.
func NewTwilioClient(cfg Config) (*TwilioClient, error) {
	if cfg.AccountSID == "" {
		return nil, fmt.Errorf("%w: AccountSID is required", ErrInvalidConfig)
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("%w: AuthToken is required", ErrInvalidConfig)
	}
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return newTwilioClient(rest.Api, cfg)
}

func newTwilioClient(api messageCreator, cfg Config) (*TwilioClient, error) {
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: From is required", ErrInvalidConfig)
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	return &TwilioClient{
		api:     api,
		from:    cfg.From,
		limiter: rate.NewLimiter(limit, max(cfg.Burst, 1)),
	}, nil
}

// SendSMS waits for a rate limiter token and creates the message.
func (c *TwilioClient) SendSMS(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Join(ErrFailedToSend, err)
	}

	req := &twilioapi.CreateMessageParams{}
	req.SetTo(params.To)
	req.SetFrom(c.from)
	req.SetBody(params.Body)
	if params.MediaURL != "" {
		req.SetMediaUrl([]string{params.MediaURL})
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.api.CreateMessage(req)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.Join(ErrFailedToSend, err)
		}
		return nil
	case <-ctx.Done():
		// The request keeps running in the background; its result is dropped.
		return errors.Join(ErrFailedToSend, ctx.Err())
	}
}
