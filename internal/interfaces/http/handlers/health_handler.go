package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/aegisai/aegis/pkg/logger"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
	log   logger.Logger
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redisClient,
		log:   log.WithComponent("health_handler"),
	}
}

// Liveness reports that the process is up. It deliberately checks nothing.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// Readiness checks the backing stores and returns 503 until both answer.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()
	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	status := http.StatusOK

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		checks["database"] = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "error: " + err.Error()
			status = http.StatusServiceUnavailable
		}
	} else {
		checks["redis"] = "disabled"
	}

	if status != http.StatusOK {
		h.log.Warn(ctx, "readiness check failed", logger.Fields{"checks": checks})
	}
	c.JSON(status, gin.H{
		"status":    statusWord(status),
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ready"
	}
	return "unavailable"
}
