package routes

import (
	"github.com/RangerDjanger/BetterDay/internal/api/dto"
	"github.com/RangerDjanger/BetterDay/internal/api/handlers"
	"github.com/RangerDjanger/BetterDay/internal/api/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

type HabitsRoutes struct {
	handler        *handlers.HabitsHandler
	authMiddleware gin.HandlerFunc
}

func NewHabitsRoutes(handler *handlers.HabitsHandler, authMiddleware gin.HandlerFunc) *HabitsRoutes {
	return &HabitsRoutes{
		handler:        handler,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all habit-related routes
func (h *HabitsRoutes) RegisterRoutes(router *gin.Engine, breaker *middleware.CircuitBreaker) {
	validation := middleware.NewValidationMiddleware()

	habits := router.Group("/api/habits")
	habits.Use(h.authMiddleware)
	if breaker != nil {
		habits.Use(breaker.CircuitBreakerMiddleware())
	}

	// Specific routes first; lists and heatmaps are compressed.
	habits.GET("", gzip.Gzip(gzip.DefaultCompression), h.handler.ListHabits)
	habits.POST("", validation.ValidateRequest(&dto.HabitRequest{}), h.handler.CreateHabit)
	habits.GET("/today", gzip.Gzip(gzip.DefaultCompression), h.handler.GetTodaysHabits)
	habits.POST("/seed", h.handler.SeedHabits)
	habits.GET("/heatmap", validation.ValidateQuery(&dto.HeatmapQuery{}), gzip.Gzip(gzip.DefaultCompression), h.handler.GetHabitHeatmap)
	habits.GET("/activity", validation.ValidateQuery(&dto.ActivityQuery{}), h.handler.GetActivitySummary)

	habits.GET("/:id", h.handler.GetHabit)
	habits.PUT("/:id", validation.ValidateRequest(&dto.HabitRequest{}), h.handler.UpdateHabit)
	habits.DELETE("/:id", h.handler.DeleteHabit)
	habits.PUT("/:id/archive", validation.ValidateRequest(&dto.ArchiveRequest{}), h.handler.SetArchived)

	habits.GET("/:id/logs", gzip.Gzip(gzip.DefaultCompression), h.handler.ListLogs)
	habits.POST("/:id/logs", validation.ValidateRequest(&dto.LogRequest{}), h.handler.SetLog)
	habits.POST("/:id/logs/toggle", validation.ValidateRequest(&dto.ToggleRequest{}), h.handler.ToggleLog)
	habits.GET("/:id/stats", h.handler.GetHabitStats)
	habits.GET("/:id/milestones", h.handler.GetMilestones)
}
