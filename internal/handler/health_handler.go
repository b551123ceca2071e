package handler

import (
	"context"
	"time"

	"quizly/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is anything that can report its own reachability, such as *sqlx.DB or domain.Cache.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain ping function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler reports the reachability of the store and the cache.
type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health godoc
// @Summary Liveness and dependency check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	status := fiber.StatusOK
	body := fiber.Map{"status": "ok"}
	for name, check := range h.checks {
		if err := check.PingContext(ctx); err != nil {
			logger.Get().Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			body[name] = "unavailable"
			status = fiber.StatusServiceUnavailable
			continue
		}
		body[name] = "ok"
	}
	if status != fiber.StatusOK {
		body["status"] = "degraded"
	}
	return c.Status(status).JSON(body)
}
