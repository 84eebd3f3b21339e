package sms

import "errors"

var (
	ErrFailedToSend  = errors.New("sms: failed to send message")
	ErrInvalidConfig = errors.New("sms: invalid config")
	ErrInvalidParams = errors.New("sms: invalid params")
)
