package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/pkg/metrics"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

const notConfigured = "not configured"

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": Version,
		})
	}
}

// readiness is the /v1/ready body. Hazard zones and districts live in the
// database, so only a failing database makes the gateway unready; the
// broker, the cache and missing routing providers degrade it.
type readiness struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Providers map[string]string `json:"providers"`
}

// ReadyHandler reports the state of every dependency the gateway talks to.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		dbState := databaseState(ctx, deps)
		r := readiness{
			Status: "ready",
			Checks: map[string]string{
				"database": dbState,
				"nats":     natsState(deps),
				"cache":    cacheState(ctx, deps),
			},
			Providers: providerState(deps),
		}

		code := fiber.StatusOK
		if dbState != "ok" {
			r.Status = "not ready"
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(r)
	}
}

func databaseState(ctx context.Context, deps *Dependencies) string {
	if deps.DB == nil {
		return notConfigured
	}
	if err := deps.DB.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	metrics.UpdateDBPoolMetrics(deps.DB.Stat())
	return "ok"
}

func natsState(deps *Dependencies) string {
	switch {
	case deps.NATS == nil:
		return notConfigured
	case deps.NATS.IsConnected():
		return "ok"
	default:
		return "disconnected"
	}
}

func cacheState(ctx context.Context, deps *Dependencies) string {
	if deps.Cache == nil {
		return notConfigured
	}
	if err := deps.Cache.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// providerState maps each route provider to the backend serving it.
func providerState(deps *Dependencies) map[string]string {
	out := map[string]string{
		string(domain.ProviderPathFilter):   notConfigured,
		string(domain.ProviderPolygonAvoid): notConfigured,
	}
	if deps.SafeRoutes == nil {
		return out
	}
	for p, name := range deps.SafeRoutes.Providers() {
		if name != "" {
			out[string(p)] = name
		}
	}
	return out
}
