package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck probes a single downstream dependency.
type ReadinessCheck func(ctx context.Context) error

// HealthOption customizes the health handler.
type HealthOption func(*HealthHandler)

// WithReadinessCheck registers a named dependency probe for the readiness endpoint.
func WithReadinessCheck(name string, check ReadinessCheck) HealthOption {
	return func(h *HealthHandler) {
		if name == "" || check == nil {
			return
		}
		h.checks[name] = check
	}
}

// HealthHandler exposes liveness and readiness information.
type HealthHandler struct {
	startedAt time.Time
	checks    map[string]ReadinessCheck
}

// NewHealthHandler builds a new health handler instance.
func NewHealthHandler(opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{
		startedAt: time.Now().UTC(),
		checks:    make(map[string]ReadinessCheck),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Status reports liveness: the process is up and serving.
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		StartedAt: h.startedAt,
	})
}

// Readiness probes downstream dependencies and reports per-check results.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	status := http.StatusOK

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ready"
	if status != http.StatusOK {
		overall = "not ready"
	}

	c.JSON(status, ReadinessResponse{
		Status: overall,
		Checks: results,
	})
}
