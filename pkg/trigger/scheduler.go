package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

// Scheduler runs visit cycles on a cron schedule. Overlapping runs are
// skipped rather than queued.
type Scheduler struct {
	visitor Visitor
	log     *slog.Logger
	c       *cron.Cron

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler parses spec (standard five fields, optional seconds, or a
// descriptor such as "@every 1m") and prepares a stopped scheduler.
func NewScheduler(spec string, v Visitor, log *slog.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: visit schedule %q: %w", drip.ErrConfiguration, spec, err)
	}

	s := &Scheduler{visitor: v, log: log}
	s.c = cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})),
	)
	s.c.Schedule(sched, cron.FuncJob(s.run))
	return s, nil
}

// Start begins firing. Cycles run with a context derived from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.c.Start()
	s.log.InfoContext(ctx, "visit scheduler started")
}

// Stop cancels any running cycle and waits for it to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-s.c.Stop().Done()
	s.log.Info("visit scheduler stopped")
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	counts := map[string]int{}
	for _, rep := range s.visitor.VisitAll(ctx) {
		counts[rep.Result.Outcome.String()]++
	}
	attrs := make([]any, 0, len(counts))
	for label, n := range counts {
		attrs = append(attrs, slog.Int(label, n))
	}
	s.log.InfoContext(ctx, "scheduled visit finished", slog.Group("outcomes", attrs...))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ log *slog.Logger }

func (l cronLogger) Info(msg string, kv ...any) {
	l.log.Debug(msg, kv...)
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.log.Error(msg, append([]any{logger.Error(err)}, kv...)...)
}
