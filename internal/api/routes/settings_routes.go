package routes

import (
	"github.com/RangerDjanger/BetterDay/internal/api/dto"
	"github.com/RangerDjanger/BetterDay/internal/api/handlers"
	"github.com/RangerDjanger/BetterDay/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type SettingsRoutes struct {
	settings       *handlers.SettingsHandler
	users          *handlers.UserHandler
	authMiddleware gin.HandlerFunc
}

func NewSettingsRoutes(settings *handlers.SettingsHandler, users *handlers.UserHandler, authMiddleware gin.HandlerFunc) *SettingsRoutes {
	return &SettingsRoutes{
		settings:       settings,
		users:          users,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers settings, reminder preview and account routes.
func (r *SettingsRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	validation := middleware.NewValidationMiddleware()

	api := router.Group("/api")
	api.Use(r.authMiddleware)

	api.GET("/settings", r.settings.GetSettings)
	api.PUT("/settings", validation.ValidateRequest(&dto.SettingsRequest{}), r.settings.SaveSettings)
	api.GET("/reminders", r.settings.PreviewReminders)

	api.GET("/me", r.users.GetMe)
	api.DELETE("/me/data", cache.CacheInvalidate(moodResource, reflectionsResource), r.users.ClearData)
}
