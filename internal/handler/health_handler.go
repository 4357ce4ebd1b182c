package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/utils"
)

// HealthHandler reports process liveness and dependency readiness.
type HealthHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	logger zerolog.Logger
}

// NewHealthHandler creates a health handler instance. Redis may be nil.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: logger.With().Str("component", "health_handler").Logger(),
	}
}

// Register binds the health probes at the application root.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/healthz", h.live)
	router.Get("/readyz", h.ready)
}

func (h *HealthHandler) live(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "alive", fiber.Map{"status": "ok"})
}

func (h *HealthHandler) ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(requestContext(c), 2*time.Second)
	defer cancel()

	checks := fiber.Map{"database": "ok"}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("database readiness check failed")
		checks["database"] = "unavailable"
		return utils.SendError(c, fiber.StatusServiceUnavailable, "database unavailable")
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.logger.Warn().Err(err).Msg("redis readiness check failed")
			checks["redis"] = "unavailable"
			return utils.SendError(c, fiber.StatusServiceUnavailable, "redis unavailable")
		}
		checks["redis"] = "ok"
	}

	return utils.SendSuccess(c, "ready", checks)
}
