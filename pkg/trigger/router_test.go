package trigger_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/httpserver"
	"github.com/dmitrymomot/dripfeed/pkg/logger"
	"github.com/dmitrymomot/dripfeed/pkg/trigger"
)

type visitorFunc func(ctx context.Context) []drip.Report

func (f visitorFunc) VisitAll(ctx context.Context) []drip.Report { return f(ctx) }

func TestPing(t *testing.T) {
	t.Parallel()

	reports := []drip.Report{
		{Collection: "annie", Result: drip.Result{Outcome: drip.OutcomeOK}},
		{Collection: "bob", Result: drip.Result{Outcome: drip.OutcomeTooEarly}},
		{Collection: "carol", Result: drip.Result{Outcome: drip.OutcomeError, Err: errors.New("boom")}},
	}
	calls := 0
	h := trigger.NewRouter(visitorFunc(func(context.Context) []drip.Report {
		calls++
		return reports
	}), logger.Discard())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[
		{"collection":"annie","result":{"val":0,"msg":"OK"}},
		{"collection":"bob","result":{"val":3,"msg":"tooearly"}},
		{"collection":"carol","result":{"val":-1,"msg":"error: boom"}}
	]`, rec.Body.String())
}

func TestPing_NoQueues(t *testing.T) {
	t.Parallel()

	h := trigger.NewRouter(visitorFunc(func(context.Context) []drip.Report { return nil }), logger.Discard())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPing_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	h := trigger.NewRouter(visitorFunc(func(context.Context) []drip.Report {
		t.Fatal("visit must not run")
		return nil
	}), logger.Discard())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthRoutes(t *testing.T) {
	t.Parallel()

	h := trigger.NewRouter(visitorFunc(func(context.Context) []drip.Report { return nil }), logger.Discard(),
		httpserver.Check{Name: "store", Func: func(context.Context) error { return errors.New("down") }},
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body["status"])
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var got string
	h := trigger.NewRouter(visitorFunc(func(ctx context.Context) []drip.Report {
		if attr, ok := trigger.RequestIDExtractor(ctx); ok {
			got = attr.Value.String()
		}
		return nil
	}), logger.Discard())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-42", got)
}
