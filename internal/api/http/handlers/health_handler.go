package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/logic-legends/triage-service/internal/observability"
)

// HealthHandler reports liveness and dependency readiness.
type HealthHandler struct {
	pool    *pgxpool.Pool
	redis   *redis.Client
	metrics *observability.Metrics
}

// NewHealthHandler constructs the handler.
func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{pool: pool, redis: redisClient, metrics: metrics}
}

// Liveness GET /healthz.
func (h *HealthHandler) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness GET /readyz.
func (h *HealthHandler) Readiness(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if h.pool != nil {
		if err := h.pool.Ping(c.UserContext()); err != nil {
			checks["postgres"] = "unreachable"
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	} else {
		checks["postgres"] = "disabled"
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.UserContext()).Err(); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "disabled"
	}

	status := fiber.StatusOK
	if !healthy {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"status": checks})
}

// Metrics GET /metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
