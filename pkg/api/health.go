package api

import (
	"context"
	"net/http"
	"time"

	"github.com/veterinaryhq/userd/pkg/store"
)

// healthCheckTimeout bounds the backend probe so a stuck database cannot
// hang the readiness endpoint.
const healthCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Can the store serve requests?
type HealthHandler struct {
	store store.UserStore
}

// NewHealthHandler creates a new health handler.
//
// The store parameter may be nil, in which case readiness returns
// unhealthy status.
func NewHealthHandler(st store.UserStore) *HealthHandler {
	return &HealthHandler{store: st}
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK if the server process is running. This endpoint is designed
// for Kubernetes liveness probes and should always succeed as long as the
// HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, HealthyResponse(map[string]string{
		"service": "userd",
	}))
}

// Readiness handles GET /health/ready - readiness probe.
//
// Returns 200 OK when the user store answers a health check, 503 Service
// Unavailable otherwise. A not-ready response tells orchestrators to stop
// routing traffic without restarting the process.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		JSON(w, http.StatusServiceUnavailable, UnhealthyResponse("store not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := h.store.Healthcheck(ctx); err != nil {
		JSON(w, http.StatusServiceUnavailable, UnhealthyResponse(err.Error()))
		return
	}

	JSON(w, http.StatusOK, HealthyResponse(map[string]interface{}{
		"store":   "postgres",
		"latency": time.Since(start).String(),
	}))
}
