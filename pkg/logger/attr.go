package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Queue records the queue collection name under the key "queue".
func Queue(collection string) slog.Attr {
	return slog.String("queue", collection)
}

// PeriodKey records the delivery period under the key "period_key".
func PeriodKey(key string) slog.Attr {
	return slog.String("period_key", key)
}

// Outcome records a visit outcome label under the key "outcome".
func Outcome(label string) slog.Attr {
	return slog.String("outcome", label)
}

// MessageID records the message identifier under the key "message_id".
// If id is empty, it returns an empty Attr.
func MessageID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("message_id", id)
}

// Recipient records a delivery recipient under the key "recipient".
func Recipient(to string) slog.Attr {
	return slog.String("recipient", to)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
