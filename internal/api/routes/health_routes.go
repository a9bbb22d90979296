package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status     string            `json:"status" example:"healthy"`
	Timestamp  time.Time         `json:"timestamp" example:"2025-04-17T02:00:00Z"`
	Components map[string]string `json:"components,omitempty"`
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// SetupHealthRoutes registers liveness, readiness and metrics endpoints.
// Readiness fails with 503 when any check fails.
func SetupHealthRoutes(router *gin.Engine, checks map[string]HealthCheck) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
		})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		resp := HealthResponse{
			Status:     "ready",
			Timestamp:  time.Now().UTC(),
			Components: make(map[string]string, len(checks)),
		}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Components[name] = "unhealthy: " + err.Error()
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Components[name] = "healthy"
		}
		c.JSON(status, resp)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
