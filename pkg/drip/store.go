package drip

import (
	"context"
	"iter"
)

// MessageStore is the persisted, ordered message collection of one queue.
//
// Claim is the only write that decides whether a period is taken. It must
// succeed only when the message is pending, is not yet claimed for periodKey,
// and no sibling message holds periodKey as a claim or as Sent. Any other case
// returns ErrPeriodClaimed.
type MessageStore interface {
	// HasPeriod reports whether any message was sent or claimed for periodKey.
	HasPeriod(ctx context.Context, periodKey string) (bool, error)

	// NextPending returns the pending message with the lowest OrderID,
	// or ErrNoPendingMessage.
	NextPending(ctx context.Context) (Message, error)

	// Claim reserves periodKey for the message identified by id.
	Claim(ctx context.Context, id, periodKey string) error

	// MarkSent stamps Sent on a message that holds the claim for periodKey.
	MarkSent(ctx context.Context, id, periodKey string) error

	// Release drops a claim that did not lead to a delivery.
	Release(ctx context.Context, id, periodKey string) error

	// Insert appends messages to the collection.
	Insert(ctx context.Context, msgs ...Message) error
}

// StoreProvider hands out the MessageStore bound to a collection name.
type StoreProvider interface {
	MessageStore(collection string) MessageStore
}

// MasterSource enumerates queue definitions. The sequence reflects storage
// contents at enumeration time and is not restartable. An error value ends
// the sequence.
type MasterSource interface {
	Records(ctx context.Context) iter.Seq2[MasterRecord, error]
}
