package trigger

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/httpserver"
	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

// Visitor runs one visit cycle over all queues.
type Visitor interface {
	VisitAll(ctx context.Context) []drip.Report
}

// RequestIDExtractor adds chi's request id to log records.
var RequestIDExtractor = logger.StringValue("request_id", middleware.GetReqID)

// NewRouter wires the trigger and health endpoints.
func NewRouter(v Visitor, log *slog.Logger, checks ...httpserver.Check) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/ping", PingHandler(v, log))
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", httpserver.HealthCheckHandler(log))
		r.Get("/ready", httpserver.HealthCheckHandler(log, checks...))
	})

	return r
}

// PingHandler visits every queue and writes the reports as a JSON array.
// Per-queue failures are part of the body; the status is always 200.
func PingHandler(v Visitor, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports := v.VisitAll(r.Context())
		if reports == nil {
			reports = []drip.Report{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(reports); err != nil {
			log.ErrorContext(r.Context(), "failed to write ping response", logger.Error(err))
		}
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.DebugContext(r.Context(), "request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
