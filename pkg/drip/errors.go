package drip

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a master record that cannot be turned into a queue.
	ErrConfiguration = errors.New("drip: invalid queue configuration")

	// ErrStorage marks a failed message store or master source operation.
	ErrStorage = errors.New("drip: storage failure")

	// ErrTransport marks a failed delivery through an external channel.
	ErrTransport = errors.New("drip: delivery failed")

	// ErrTimeout marks a delivery that did not finish before its deadline.
	ErrTimeout = errors.New("drip: delivery timed out")

	// ErrNoPendingMessage is returned by MessageStore.NextPending when every message has been sent.
	ErrNoPendingMessage = errors.New("drip: no pending message")

	// ErrPeriodClaimed is returned by MessageStore.Claim when the period is already taken
	// by this or a sibling message.
	ErrPeriodClaimed = errors.New("drip: period already claimed")

	// ErrMessageNotFound is returned when a targeted update matches nothing.
	ErrMessageNotFound = errors.New("drip: message not found")

	ErrNoRecipients          = errors.New("drip: queue has no recipients")
	ErrUnknownDeliveryMethod = errors.New("drip: unknown delivery method")
	ErrChannelNotConfigured  = errors.New("drip: delivery channel not configured")
	ErrInvalidBulkStartLine  = errors.New("drip: bulk start line must be >= 1")
	ErrDuplicateCollection   = errors.New("drip: duplicate collection name")
)

// ConfigError describes why a master record was rejected.
type ConfigError struct {
	Collection string
	Field      string
	Err        error
}

func (e *ConfigError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("%s: field %q: %v", ErrConfiguration, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: collection %q: field %q: %v", ErrConfiguration, e.Collection, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

func configErr(collection, field string, err error) error {
	return &ConfigError{Collection: collection, Field: field, Err: err}
}
