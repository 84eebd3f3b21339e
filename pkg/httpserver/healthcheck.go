package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

// Check is a named readiness dependency.
type Check struct {
	Name string
	Func func(context.Context) error
}

type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheckHandler serves liveness when no checks are given ("alive") and
// readiness otherwise: every check runs with the request context, and any
// failure turns the response into 503 "not_ready".
func HealthCheckHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			writeHealth(w, http.StatusOK, healthStatus{Status: "alive"})
			return
		}

		status := healthStatus{Status: "ready", Checks: make(map[string]string, len(checks))}
		code := http.StatusOK
		for _, c := range checks {
			if err := c.Func(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					slog.String("check", c.Name), logger.Error(err))
				status.Checks[c.Name] = "fail"
				status.Status = "not_ready"
				code = http.StatusServiceUnavailable
				continue
			}
			status.Checks[c.Name] = "ok"
		}
		writeHealth(w, code, status)
	}
}

func writeHealth(w http.ResponseWriter, code int, v healthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
