package httpx

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	healthResponse   = `{"status":"ok"}`
	degradedResponse = `{"status":"degraded"}`
	healthTimeout    = 2 * time.Second
)

// HealthCheck reports whether a dependency (such as the Redis state store) is usable.
type HealthCheck func(ctx context.Context) error

// healthHandler answers readiness/liveness probes. With no checks it always returns 200.
func healthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, healthResponse
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				status, body = http.StatusServiceUnavailable, degradedResponse
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = io.WriteString(w, body)
	}
}
