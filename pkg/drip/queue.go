package drip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

// DefaultSendTimeout bounds a single external delivery.
const DefaultSendTimeout = 15 * time.Second

// Queue evaluates delivery eligibility for one configured message queue.
type Queue struct {
	cfg         QueueConfig
	store       MessageStore
	channel     Channel
	logger      *slog.Logger
	now         func() time.Time
	intn        func(n int) int
	sendTimeout time.Duration
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithLogger sets the queue logger. Nil is ignored.
func WithLogger(l *slog.Logger) QueueOption {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) QueueOption {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithRandom replaces the uniform draw used by the random gate.
// intn(n) must return a value in [0, n).
func WithRandom(intn func(n int) int) QueueOption {
	return func(q *Queue) {
		if intn != nil {
			q.intn = intn
		}
	}
}

// WithSendTimeout bounds every delivery call. Non-positive values are ignored.
func WithSendTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.sendTimeout = d
		}
	}
}

// NewQueue assembles a queue from its parsed configuration and collaborators.
func NewQueue(cfg QueueConfig, store MessageStore, channel Channel, opts ...QueueOption) *Queue {
	q := &Queue{
		cfg:         cfg,
		store:       store,
		channel:     channel,
		logger:      slog.Default(),
		now:         time.Now,
		intn:        rand.IntN,
		sendTimeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.cfg.Location == nil {
		q.cfg.Location = time.UTC
	}
	q.logger = q.logger.With(logger.Queue(cfg.CollectionName))
	return q
}

// Config returns the queue configuration.
func (q *Queue) Config() QueueConfig { return q.cfg }

// Name returns the collection name identifying the queue.
func (q *Queue) Name() string { return q.cfg.CollectionName }

// Visit runs the gates in order and dispatches at most one message.
// Storage and delivery failures come back as OutcomeError; they never
// stamp the message as sent.
func (q *Queue) Visit(ctx context.Context) Result {
	now := q.now().In(q.cfg.Location)
	start := time.Date(now.Year(), now.Month(), now.Day(), q.cfg.StartHour, q.cfg.StartMinute, 0, 0, q.cfg.Location)
	if now.Before(start) {
		q.logger.DebugContext(ctx, "before start time, skipping",
			slog.Time("now", now),
			slog.Time("start", start),
		)
		return resultOf(OutcomeTooEarly)
	}

	key := PeriodKey(q.cfg.Frequency, now)
	log := q.logger.With(logger.PeriodKey(key))

	taken, err := q.store.HasPeriod(ctx, key)
	if err != nil {
		return q.fail(ctx, log, "failed to check period", storageErr(err))
	}
	if taken {
		log.DebugContext(ctx, "message already sent for period")
		return resultOf(OutcomeAlreadySent)
	}

	if draw := q.intn(q.cfg.RandomLevel + 1); draw != 0 {
		log.DebugContext(ctx, "random requirement not met", slog.Int("draw", draw))
		return resultOf(OutcomeRandomNotMet)
	}

	msg, err := q.store.NextPending(ctx)
	if errors.Is(err, ErrNoPendingMessage) {
		log.InfoContext(ctx, "no pending message left")
		return resultOf(OutcomeNoPendingMessage)
	}
	if err != nil {
		return q.fail(ctx, log, "failed to select pending message", storageErr(err))
	}
	log = log.With(logger.MessageID(msg.ID), slog.Int64("orderid", msg.OrderID))

	if err := q.store.Claim(ctx, msg.ID, key); err != nil {
		if errors.Is(err, ErrPeriodClaimed) {
			log.InfoContext(ctx, "period claimed by a concurrent visit")
			return resultOf(OutcomeAlreadySent)
		}
		return q.fail(ctx, log, "failed to claim period", storageErr(err))
	}

	if err := q.deliver(ctx, msg); err != nil {
		if rerr := q.store.Release(ctx, msg.ID, key); rerr != nil {
			log.ErrorContext(ctx, "failed to release claim", logger.Error(rerr))
		}
		return q.fail(ctx, log, "delivery failed", err)
	}

	if err := q.store.MarkSent(ctx, msg.ID, key); err != nil {
		// The message went out; the claim still blocks this period.
		return q.fail(ctx, log, "delivered but failed to mark as sent", storageErr(err))
	}

	log.InfoContext(ctx, "message sent", logger.Outcome(OutcomeOK.String()))
	return resultOf(OutcomeOK)
}

func (q *Queue) deliver(ctx context.Context, msg Message) error {
	sendCtx, cancel := context.WithTimeout(ctx, q.sendTimeout)
	defer cancel()

	start := time.Now()
	err := q.channel.Deliver(sendCtx, q.cfg.Target, msg)
	if err == nil {
		q.logger.DebugContext(ctx, "delivery finished", logger.Duration(time.Since(start)))
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrTimeout, q.sendTimeout, err)
	}
	if !errors.Is(err, ErrTransport) {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return err
}

func (q *Queue) fail(ctx context.Context, log *slog.Logger, msg string, err error) Result {
	log.ErrorContext(ctx, msg, logger.Error(err))
	return failed(err)
}

func storageErr(err error) error {
	if errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
