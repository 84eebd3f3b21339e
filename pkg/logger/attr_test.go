package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attr slog.Attr
		key  string
		val  any
	}{
		{logger.Queue("annie"), "queue", "annie"},
		{logger.PeriodKey("2024-03-07"), "period_key", "2024-03-07"},
		{logger.Outcome("OK"), "outcome", "OK"},
		{logger.MessageID("m-1"), "message_id", "m-1"},
		{logger.Recipient("+1555"), "recipient", "+1555"},
		{logger.RequestID("r-1"), "request_id", "r-1"},
		{logger.Component("runner"), "component", "runner"},
		{logger.Duration(time.Second), "duration", time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.key, tt.attr.Key)
		assert.Equal(t, tt.val, tt.attr.Value.Any())
	}

	assert.True(t, logger.MessageID("").Equal(slog.Attr{}))
}
