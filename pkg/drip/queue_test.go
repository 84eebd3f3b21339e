package drip_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

// recordingChannel remembers every delivered message.
type recordingChannel struct {
	mu   sync.Mutex
	sent []drip.Message
	err  error
}

func (c *recordingChannel) Deliver(_ context.Context, _ []string, msg drip.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *recordingChannel) delivered() []drip.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]drip.Message(nil), c.sent...)
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func dailyConfig(t *testing.T) drip.QueueConfig {
	t.Helper()
	cfg, err := drip.ParseQueueConfig(validRecord())
	require.NoError(t, err)
	return cfg
}

func threeMessages() []drip.Message {
	return []drip.Message{
		{OrderID: 3, ID: "c", Text: "third"},
		{OrderID: 1, ID: "a", Text: "first"},
		{OrderID: 2, ID: "b", Text: "second"},
	}
}

func newQueue(cfg drip.QueueConfig, store drip.MessageStore, ch drip.Channel, opts ...drip.QueueOption) *drip.Queue {
	opts = append([]drip.QueueOption{drip.WithLogger(logger.Discard())}, opts...)
	return drip.NewQueue(cfg, store, ch, opts...)
}

func sentOf(store *drip.MemoryStore, id string) string {
	for _, m := range store.Messages() {
		if m.ID == id {
			return m.Sent
		}
	}
	return ""
}

func TestQueue_DailyScenario(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Date(2024, 3, 7, 8, 59, 0, 0, time.UTC)}
	store := drip.NewMemoryStore(threeMessages()...)
	ch := &recordingChannel{}
	q := newQueue(dailyConfig(t), store, ch, drip.WithClock(clk.Now))
	ctx := context.Background()

	assert.Equal(t, drip.OutcomeTooEarly, q.Visit(ctx).Outcome)
	assert.Empty(t, ch.delivered())

	clk.Set(time.Date(2024, 3, 7, 9, 1, 0, 0, time.UTC))
	require.Equal(t, drip.OutcomeOK, q.Visit(ctx).Outcome)
	assert.Equal(t, "2024-03-07", sentOf(store, "a"))

	assert.Equal(t, drip.OutcomeAlreadySent, q.Visit(ctx).Outcome)

	clk.Set(time.Date(2024, 3, 8, 9, 1, 0, 0, time.UTC))
	require.Equal(t, drip.OutcomeOK, q.Visit(ctx).Outcome)
	assert.Equal(t, "2024-03-08", sentOf(store, "b"))
	assert.Empty(t, sentOf(store, "c"))

	got := ch.delivered()
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
}

func TestQueue_TooEarlyIgnoresEverythingElse(t *testing.T) {
	t.Parallel()

	cfg := dailyConfig(t)
	cfg.StartHour, cfg.StartMinute = 17, 30
	calls := 0
	q := newQueue(cfg, drip.NewMemoryStore(threeMessages()...), &recordingChannel{},
		drip.WithClock(func() time.Time { return time.Date(2024, 3, 7, 17, 29, 59, 0, time.UTC) }),
		drip.WithRandom(func(int) int { calls++; return 0 }),
	)

	for range 5 {
		assert.Equal(t, drip.OutcomeTooEarly, q.Visit(context.Background()).Outcome)
	}
	assert.Zero(t, calls, "random gate must not be consulted")
}

func TestQueue_StartTimeInQueueTimezone(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	cfg := dailyConfig(t)
	cfg.Location = ny

	// 13:30 UTC is 08:30 or 09:30 in New York depending on DST; March 7 is EST.
	q := newQueue(cfg, drip.NewMemoryStore(threeMessages()...), &recordingChannel{},
		drip.WithClock(func() time.Time { return time.Date(2024, 3, 7, 13, 30, 0, 0, time.UTC) }),
	)
	assert.Equal(t, drip.OutcomeTooEarly, q.Visit(context.Background()).Outcome)

	q = newQueue(cfg, drip.NewMemoryStore(threeMessages()...), &recordingChannel{},
		drip.WithClock(func() time.Time { return time.Date(2024, 3, 7, 14, 30, 0, 0, time.UTC) }),
	)
	assert.Equal(t, drip.OutcomeOK, q.Visit(context.Background()).Outcome)
}

func TestQueue_AlreadySentWithinPeriod(t *testing.T) {
	t.Parallel()

	cfg := dailyConfig(t)
	cfg.Frequency = drip.FrequencyHourly
	clk := &clock{now: time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)}
	store := drip.NewMemoryStore(threeMessages()...)
	q := newQueue(cfg, store, &recordingChannel{}, drip.WithClock(clk.Now))
	ctx := context.Background()

	require.Equal(t, drip.OutcomeOK, q.Visit(ctx).Outcome)
	for _, m := range []int{1, 15, 59} {
		clk.Set(time.Date(2024, 3, 7, 10, m, 0, 0, time.UTC))
		assert.Equal(t, drip.OutcomeAlreadySent, q.Visit(ctx).Outcome)
	}

	clk.Set(time.Date(2024, 3, 7, 11, 0, 0, 0, time.UTC))
	assert.Equal(t, drip.OutcomeOK, q.Visit(ctx).Outcome)
	assert.Equal(t, "2024-03-07-11", sentOf(store, "b"))
}

func TestQueue_RandomLevelZeroNeverBlocks(t *testing.T) {
	t.Parallel()

	cfg := dailyConfig(t)
	cfg.Frequency = drip.FrequencyTenSecond
	base := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	i := 0

	msgs := make([]drip.Message, 0, 200)
	for n := range 200 {
		msgs = append(msgs, drip.Message{OrderID: int64(n), ID: fmt.Sprintf("m%d", n)})
	}
	q := newQueue(cfg, drip.NewMemoryStore(msgs...), &recordingChannel{},
		drip.WithClock(func() time.Time { i++; return base.Add(time.Duration(i) * time.Second) }),
	)
	for range 200 {
		assert.NotEqual(t, drip.OutcomeRandomNotMet, q.Visit(context.Background()).Outcome)
	}
}

func TestQueue_RandomGateProbability(t *testing.T) {
	t.Parallel()

	const (
		level  = 3
		trials = 20000
	)
	cfg := dailyConfig(t)
	cfg.RandomLevel = level
	// No pending messages: a visit past the gate ends in NO_PENDING_MESSAGE.
	q := newQueue(cfg, drip.NewMemoryStore(), &recordingChannel{},
		drip.WithClock(func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }),
	)

	passed := 0
	for range trials {
		switch q.Visit(context.Background()).Outcome {
		case drip.OutcomeNoPendingMessage:
			passed++
		case drip.OutcomeRandomNotMet:
		default:
			t.Fatal("unexpected outcome")
		}
	}
	assert.InDelta(t, 1.0/(level+1), float64(passed)/trials, 0.02)
}

func TestQueue_RandomGateRange(t *testing.T) {
	t.Parallel()

	cfg := dailyConfig(t)
	cfg.RandomLevel = 7
	var gotN int
	q := newQueue(cfg, drip.NewMemoryStore(threeMessages()...), &recordingChannel{},
		drip.WithClock(func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }),
		drip.WithRandom(func(n int) int { gotN = n; return n - 1 }),
	)

	assert.Equal(t, drip.OutcomeRandomNotMet, q.Visit(context.Background()).Outcome)
	assert.Equal(t, 8, gotN, "draw is over [0, randomLevel] inclusive")
}

func TestQueue_NoPendingMessage(t *testing.T) {
	t.Parallel()

	store := drip.NewMemoryStore(drip.Message{OrderID: 1, ID: "a", Sent: "2024-03-01"})
	ch := &recordingChannel{}
	q := newQueue(dailyConfig(t), store, ch,
		drip.WithClock(func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }),
	)

	assert.Equal(t, drip.OutcomeNoPendingMessage, q.Visit(context.Background()).Outcome)
	assert.Empty(t, ch.delivered())
}

func TestQueue_DeliveryFailureKeepsMessagePending(t *testing.T) {
	t.Parallel()

	store := drip.NewMemoryStore(threeMessages()...)
	ch := &recordingChannel{err: errors.New("twilio: 503")}
	q := newQueue(dailyConfig(t), store, ch,
		drip.WithClock(func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }),
	)
	ctx := context.Background()

	res := q.Visit(ctx)
	assert.Equal(t, drip.OutcomeError, res.Outcome)
	assert.ErrorIs(t, res.Err, drip.ErrTransport)
	assert.Empty(t, sentOf(store, "a"))

	// The claim was released, so the same period can be retried.
	ch.err = nil
	assert.Equal(t, drip.OutcomeOK, q.Visit(ctx).Outcome)
	assert.Equal(t, "2024-03-07", sentOf(store, "a"))
}

func TestQueue_DeliveryTimeout(t *testing.T) {
	t.Parallel()

	slow := drip.ChannelFunc(func(ctx context.Context, _ []string, _ drip.Message) error {
		<-ctx.Done()
		return ctx.Err()
	})
	store := drip.NewMemoryStore(threeMessages()...)
	q := newQueue(dailyConfig(t), store, slow,
		drip.WithClock(func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }),
		drip.WithSendTimeout(20*time.Millisecond),
	)

	res := q.Visit(context.Background())
	assert.Equal(t, drip.OutcomeError, res.Outcome)
	assert.ErrorIs(t, res.Err, drip.ErrTimeout)
	assert.NotErrorIs(t, res.Err, drip.ErrTransport)
	assert.Empty(t, sentOf(store, "a"))
}

// failingStore injects errors into an otherwise working store.
type failingStore struct {
	*drip.MemoryStore
	hasPeriodErr error
	markSentErr  error
}

func (s *failingStore) HasPeriod(ctx context.Context, key string) (bool, error) {
	if s.hasPeriodErr != nil {
		return false, s.hasPeriodErr
	}
	return s.MemoryStore.HasPeriod(ctx, key)
}

func (s *failingStore) MarkSent(ctx context.Context, id, key string) error {
	if s.markSentErr != nil {
		return s.markSentErr
	}
	return s.MemoryStore.MarkSent(ctx, id, key)
}

func TestQueue_StorageErrors(t *testing.T) {
	t.Parallel()

	at := func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }

	t.Run("period check", func(t *testing.T) {
		t.Parallel()
		store := &failingStore{MemoryStore: drip.NewMemoryStore(threeMessages()...), hasPeriodErr: errors.New("connection reset")}
		ch := &recordingChannel{}
		res := newQueue(dailyConfig(t), store, ch, drip.WithClock(at)).Visit(context.Background())
		assert.Equal(t, drip.OutcomeError, res.Outcome)
		assert.ErrorIs(t, res.Err, drip.ErrStorage)
		assert.Empty(t, ch.delivered())
	})

	t.Run("mark sent", func(t *testing.T) {
		t.Parallel()
		store := &failingStore{MemoryStore: drip.NewMemoryStore(threeMessages()...), markSentErr: errors.New("write concern")}
		q := newQueue(dailyConfig(t), store, &recordingChannel{}, drip.WithClock(at))
		res := q.Visit(context.Background())
		assert.Equal(t, drip.OutcomeError, res.Outcome)
		assert.ErrorIs(t, res.Err, drip.ErrStorage)

		// The claim still holds the period: no second delivery.
		assert.Equal(t, drip.OutcomeAlreadySent, q.Visit(context.Background()).Outcome)
	})
}

func TestQueue_ConcurrentVisitsDeliverOnce(t *testing.T) {
	t.Parallel()

	store := drip.NewMemoryStore(threeMessages()...)
	ch := &recordingChannel{}
	q := newQueue(dailyConfig(t), store, ch,
		drip.WithClock(func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }),
	)

	var wg sync.WaitGroup
	results := make([]drip.Outcome, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = q.Visit(context.Background()).Outcome
		}()
	}
	wg.Wait()

	ok := 0
	for _, o := range results {
		if o == drip.OutcomeOK {
			ok++
			continue
		}
		assert.Equal(t, drip.OutcomeAlreadySent, o)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, ch.delivered(), 1)
}
