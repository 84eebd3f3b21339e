package drip

import (
	"context"
	"iter"
	"log/slog"

	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

// ChannelResolver returns the channel serving a delivery method.
type ChannelResolver interface {
	For(method DeliveryMethod) (Channel, error)
}

// Registry builds queues from the master configuration.
type Registry struct {
	source    MasterSource
	stores    StoreProvider
	channels  ChannelResolver
	logger    *slog.Logger
	queueOpts []QueueOption
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the registry logger. It is also handed to every queue.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithQueueOptions appends options applied to every constructed queue.
func WithQueueOptions(opts ...QueueOption) RegistryOption {
	return func(r *Registry) {
		r.queueOpts = append(r.queueOpts, opts...)
	}
}

// NewRegistry creates a registry over a master source.
func NewRegistry(source MasterSource, stores StoreProvider, channels ChannelResolver, opts ...RegistryOption) *Registry {
	r := &Registry{
		source:   source,
		stores:   stores,
		channels: channels,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build turns a master record into a Queue.
func (r *Registry) Build(rec MasterRecord) (*Queue, error) {
	cfg, err := ParseQueueConfig(rec)
	if err != nil {
		return nil, err
	}
	if _, ok := ParseFrequency(rec.Frequency); !ok {
		r.logger.Warn("unknown frequency, falling back to minute",
			logger.Queue(cfg.CollectionName),
			slog.String("frequency", rec.Frequency),
		)
	}

	ch, err := r.channels.For(cfg.DeliveryMethod)
	if err != nil {
		return nil, configErr(cfg.CollectionName, "deliverymethod", err)
	}

	opts := make([]QueueOption, 0, len(r.queueOpts)+1)
	opts = append(opts, WithLogger(r.logger))
	opts = append(opts, r.queueOpts...)
	return NewQueue(cfg, r.stores.MessageStore(cfg.CollectionName), ch, opts...), nil
}

// Queues lazily yields one queue per master record. A record that fails to
// build is yielded as (nil, err) together with its identity via QueueError,
// and enumeration continues. A source failure is yielded once and ends the sequence.
func (r *Registry) Queues(ctx context.Context) iter.Seq2[*Queue, error] {
	return func(yield func(*Queue, error) bool) {
		for rec, err := range r.source.Records(ctx) {
			if err != nil {
				yield(nil, storageErr(err))
				return
			}
			q, err := r.Build(rec)
			if err != nil {
				err = &QueueError{Collection: rec.CollectionName, Err: err}
			}
			if !yield(q, err) {
				return
			}
		}
	}
}

// QueueError ties a construction failure to the collection it came from.
type QueueError struct {
	Collection string
	Err        error
}

func (e *QueueError) Error() string { return e.Err.Error() }

func (e *QueueError) Unwrap() error { return e.Err }
