package drip_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

func newRunner(t *testing.T, backend *drip.MemoryBackend, ch drip.Channel, opts ...drip.RunnerOption) *drip.Runner {
	t.Helper()
	reg := drip.NewRegistry(backend, backend, staticChannels{ch},
		drip.WithRegistryLogger(logger.Discard()),
		drip.WithQueueOptions(drip.WithClock(func() time.Time {
			return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
		})),
	)
	opts = append([]drip.RunnerOption{drip.WithRunnerLogger(logger.Discard())}, opts...)
	return drip.NewRunner(reg, opts...)
}

func TestRunner_VisitAll(t *testing.T) {
	t.Parallel()

	backend := drip.NewMemoryBackend()
	bad := record("broken")
	bad.TimeZone = "Nowhere/Land"
	empty := record("empty")
	backend.AddMaster(record("annie"), bad, empty)
	require.NoError(t, backend.Collection("annie").Insert(context.Background(), threeMessages()...))

	reports := newRunner(t, backend, &recordingChannel{}).VisitAll(context.Background())
	require.Len(t, reports, 3)

	assert.Equal(t, "annie", reports[0].Collection)
	assert.Equal(t, drip.OutcomeOK, reports[0].Result.Outcome)

	assert.Equal(t, "broken", reports[1].Collection)
	assert.Equal(t, drip.OutcomeError, reports[1].Result.Outcome)
	assert.ErrorIs(t, reports[1].Result.Err, drip.ErrConfiguration)

	assert.Equal(t, "empty", reports[2].Collection)
	assert.Equal(t, drip.OutcomeNoPendingMessage, reports[2].Result.Outcome)
}

func TestRunner_ErrorDoesNotAbortCycle(t *testing.T) {
	t.Parallel()

	backend := drip.NewMemoryBackend()
	backend.AddMaster(record("annie"), record("bob"))
	require.NoError(t, backend.Collection("annie").Insert(context.Background(), threeMessages()...))
	require.NoError(t, backend.Collection("bob").Insert(context.Background(), threeMessages()...))

	reports := newRunner(t, backend, &recordingChannel{err: errors.New("down")}).VisitAll(context.Background())
	require.Len(t, reports, 2)
	for _, r := range reports {
		assert.Equal(t, drip.OutcomeError, r.Result.Outcome)
		assert.ErrorIs(t, r.Result.Err, drip.ErrTransport)
	}
}

func TestRunner_Locked(t *testing.T) {
	t.Parallel()

	backend := drip.NewMemoryBackend()
	backend.AddMaster(record("annie"), record("bob"))
	require.NoError(t, backend.Collection("annie").Insert(context.Background(), threeMessages()...))
	require.NoError(t, backend.Collection("bob").Insert(context.Background(), threeMessages()...))

	locker := drip.NewMemoryLocker()
	unlock, ok, err := locker.TryLock(context.Background(), "dripfeed:visit:annie", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	runner := newRunner(t, backend, &recordingChannel{}, drip.WithLocker(locker))
	reports := runner.VisitAll(context.Background())
	require.Len(t, reports, 2)
	assert.Equal(t, drip.OutcomeLocked, reports[0].Result.Outcome)
	assert.Equal(t, drip.OutcomeOK, reports[1].Result.Outcome)

	require.NoError(t, unlock(context.Background()))
	reports = runner.VisitAll(context.Background())
	assert.Equal(t, drip.OutcomeOK, reports[0].Result.Outcome)
	assert.Equal(t, drip.OutcomeAlreadySent, reports[1].Result.Outcome)
}

type brokenLocker struct{}

func (brokenLocker) TryLock(context.Context, string, time.Duration) (func(context.Context) error, bool, error) {
	return nil, false, errors.New("redis: connection refused")
}

func TestRunner_LockerFailure(t *testing.T) {
	t.Parallel()

	backend := drip.NewMemoryBackend()
	backend.AddMaster(record("annie"))

	reports := newRunner(t, backend, &recordingChannel{}, drip.WithLocker(brokenLocker{})).VisitAll(context.Background())
	require.Len(t, reports, 1)
	assert.Equal(t, drip.OutcomeError, reports[0].Result.Outcome)
	assert.ErrorIs(t, reports[0].Result.Err, drip.ErrStorage)
}

func TestRunner_CancelledContext(t *testing.T) {
	t.Parallel()

	backend := drip.NewMemoryBackend()
	backend.AddMaster(record("annie"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports := newRunner(t, backend, &recordingChannel{}).VisitAll(ctx)
	require.Len(t, reports, 1)
	assert.Equal(t, "", reports[0].Collection)
	assert.ErrorIs(t, reports[0].Result.Err, context.Canceled)
}

func TestRunner_NoQueues(t *testing.T) {
	t.Parallel()

	reports := newRunner(t, drip.NewMemoryBackend(), &recordingChannel{}).VisitAll(context.Background())
	assert.Empty(t, reports)
}
