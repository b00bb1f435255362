package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/database"
)

type HealthHandler struct {
	db                 *database.Database
	generatorAvailable func() bool
	logger             *logrus.Logger
}

func NewHealthHandler(db *database.Database, generatorAvailable func() bool, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{db: db, generatorAvailable: generatorAvailable, logger: logger}
}

// Check reports dependency health. Postgres is the only hard
// dependency; redis and the generative backend degrade the status to
// "degraded" without failing the endpoint.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	httpStatus := http.StatusOK
	checks := gin.H{}

	if err := h.db.PG.Ping(ctx); err != nil {
		h.logger.WithError(err).Error("Health check: postgres unreachable")
		checks["postgres"] = "down"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["postgres"] = "up"
	}

	if h.db.Redis != nil {
		if err := h.db.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			if status == "healthy" {
				status = "degraded"
			}
		} else {
			checks["redis"] = "up"
		}
	}

	if h.generatorAvailable() {
		checks["generative"] = "configured"
	} else {
		checks["generative"] = "not_configured"
		if status == "healthy" {
			status = "degraded"
		}
	}

	c.JSON(httpStatus, gin.H{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
