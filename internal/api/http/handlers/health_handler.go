package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/visitordesk/visitor-service/internal/observability"
	"github.com/visitordesk/visitor-service/internal/persistence"
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names a readiness check.
type Dependency struct {
	Name   string
	Pinger Pinger
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName  string
	version      string
	dependencies []Dependency
	metrics      *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, metrics *observability.Metrics, dependencies ...Dependency) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, metrics: metrics, dependencies: dependencies}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies. Dependencies
// that are not configured are reported as disabled and do not fail the probe.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	for _, dep := range h.dependencies {
		err := dep.Pinger.Ping(ctx)
		switch {
		case err == nil:
			depStatus[dep.Name] = "ok"
		case errors.Is(err, persistence.ErrNotConfigured):
			depStatus[dep.Name] = "disabled"
		default:
			depStatus[dep.Name] = err.Error()
			ready = false
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"http_code": fiber.StatusServiceUnavailable,
		"code":      "DEPENDENCY_UNAVAILABLE",
		"message":   "one or more dependencies unavailable",
		"detail":    depStatus,
	})
}

// Metrics handles GET /internal/metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	if h.metrics == nil {
		return c.JSON(observability.Snapshot{})
	}
	return c.JSON(h.metrics.Snapshot())
}
