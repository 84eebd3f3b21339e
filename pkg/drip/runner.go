package drip

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

// Locker serialises visits of the same queue across trigger invocations.
// TryLock never blocks: ok=false means another holder owns key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

const (
	defaultLockTTL = time.Minute
	lockKeyPrefix  = "dripfeed:visit:"
)

// Runner visits every queue of a registry, one after another.
type Runner struct {
	registry *Registry
	locker   Locker
	lockTTL  time.Duration
	logger   *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLocker enables per-queue mutual exclusion.
func WithLocker(l Locker) RunnerOption {
	return func(r *Runner) { r.locker = l }
}

// WithLockTTL sets how long a visit lock may be held. Non-positive values are ignored.
func WithLockTTL(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.lockTTL = d
		}
	}
}

// WithRunnerLogger sets the runner logger.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner over registry.
func NewRunner(registry *Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: registry,
		lockTTL:  defaultLockTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// VisitAll enumerates the registry and visits each queue sequentially.
// It always returns one report per master record; construction and visit
// failures are reported as OutcomeError entries. A failing master source
// adds a final error entry with an empty collection.
func (r *Runner) VisitAll(ctx context.Context) []Report {
	start := time.Now()
	reports := make([]Report, 0, 8)

	for q, err := range r.registry.Queues(ctx) {
		if err != nil {
			var qe *QueueError
			collection := ""
			if errors.As(err, &qe) {
				collection = qe.Collection
			}
			r.logger.ErrorContext(ctx, "skipping queue", logger.Queue(collection), logger.Error(err))
			reports = append(reports, Report{Collection: collection, Result: failed(err)})
			continue
		}
		if ctx.Err() != nil {
			reports = append(reports, Report{Collection: q.Name(), Result: failed(ctx.Err())})
			continue
		}
		reports = append(reports, Report{Collection: q.Name(), Result: r.visit(ctx, q)})
	}

	r.logger.InfoContext(ctx, "visit cycle finished",
		slog.Int("queues", len(reports)),
		logger.Duration(time.Since(start)),
	)
	return reports
}

func (r *Runner) visit(ctx context.Context, q *Queue) Result {
	if r.locker == nil {
		return q.Visit(ctx)
	}

	unlock, ok, err := r.locker.TryLock(ctx, lockKeyPrefix+q.Name(), r.lockTTL)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to acquire visit lock", logger.Queue(q.Name()), logger.Error(err))
		return failed(storageErr(err))
	}
	if !ok {
		r.logger.InfoContext(ctx, "queue is being visited elsewhere", logger.Queue(q.Name()))
		return resultOf(OutcomeLocked)
	}
	defer func() {
		// The request context may already be done; release on a fresh one.
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			r.logger.WarnContext(ctx, "failed to release visit lock", logger.Queue(q.Name()), logger.Error(err))
		}
	}()

	return q.Visit(ctx)
}
