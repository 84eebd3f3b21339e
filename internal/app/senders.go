package app

import (
	"log/slog"
	"path/filepath"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/email"
	"github.com/dmitrymomot/dripfeed/pkg/logger"
	"github.com/dmitrymomot/dripfeed/pkg/sms"
)

// NewChannels builds the delivery channels. In dev mode both channels write
// to DEV_OUTBOX_DIR. In live mode a channel without credentials stays
// unconfigured and queues using it report a configuration error.
func NewChannels(cfg Config, log *slog.Logger) (*drip.Channels, error) {
	log = log.With(logger.Component("delivery"))

	if cfg.DeliveryMode == DeliveryDev {
		log.Info("dev delivery mode", slog.String("outbox", cfg.DevOutboxDir))
		return drip.NewChannels(
			sms.NewDevSender(filepath.Join(cfg.DevOutboxDir, "sms.jsonl")),
			email.NewDevSender(filepath.Join(cfg.DevOutboxDir, "email")),
			log,
		), nil
	}

	var (
		text sms.Sender
		mail email.EmailSender
	)
	if cfg.SMS.Enabled() {
		c, err := sms.NewTwilioClient(cfg.SMS)
		if err != nil {
			return nil, err
		}
		text = c
	} else {
		log.Warn("twilio is not configured; txt queues will fail")
	}
	if cfg.Email.Enabled() {
		c, err := email.NewPostmarkClient(cfg.Email)
		if err != nil {
			return nil, err
		}
		mail = c
	} else {
		log.Warn("postmark is not configured; email queues will fail")
	}

	return drip.NewChannels(text, mail, log), nil
}
