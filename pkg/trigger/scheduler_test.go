package trigger_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/logger"
	"github.com/dmitrymomot/dripfeed/pkg/trigger"
)

func TestNewScheduler_InvalidSpec(t *testing.T) {
	t.Parallel()

	_, err := trigger.NewScheduler("every now and then", visitorFunc(nil), logger.Discard())
	assert.ErrorIs(t, err, drip.ErrConfiguration)
}

func TestScheduler_Runs(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	v := visitorFunc(func(context.Context) []drip.Report {
		calls.Add(1)
		return []drip.Report{{Collection: "annie", Result: drip.Result{Outcome: drip.OutcomeOK}}}
	})

	s, err := trigger.NewScheduler("@every 1s", v, logger.Discard())
	require.NoError(t, err)

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()

	n := calls.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, n, calls.Load(), "no cycles after Stop")
}
