package routes

import (
	"github.com/RangerDjanger/BetterDay/internal/api/dto"
	"github.com/RangerDjanger/BetterDay/internal/api/handlers"
	"github.com/RangerDjanger/BetterDay/internal/api/middleware"
	"github.com/RangerDjanger/BetterDay/pkg/security/auth"
	"github.com/gin-gonic/gin"
)

const (
	moodResource        = "mood"
	reflectionsResource = "reflections"
)

type JournalRoutes struct {
	handler        *handlers.JournalHandler
	authMiddleware gin.HandlerFunc
	coachLimiter   auth.RateLimiter
}

// NewJournalRoutes wires the journal endpoints. coachLimiter bounds
// check-ins per user and may be nil.
func NewJournalRoutes(handler *handlers.JournalHandler, authMiddleware gin.HandlerFunc, coachLimiter auth.RateLimiter) *JournalRoutes {
	return &JournalRoutes{
		handler:        handler,
		authMiddleware: authMiddleware,
		coachLimiter:   coachLimiter,
	}
}

func (r *JournalRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	validation := middleware.NewValidationMiddleware()

	api := router.Group("/api")
	api.Use(r.authMiddleware)

	mood := api.Group("/mood")
	mood.GET("", cache.CacheResponse(moodResource), r.handler.ListMoods)
	mood.GET("/:date", r.handler.GetMood)
	mood.PUT("", validation.ValidateRequest(&dto.MoodRequest{}), cache.CacheInvalidate(moodResource), r.handler.SaveMood)
	mood.POST("", validation.ValidateRequest(&dto.MoodRequest{}), cache.CacheInvalidate(moodResource), r.handler.SaveMood)

	reflections := api.Group("/reflections")
	reflections.GET("", cache.CacheResponse(reflectionsResource), r.handler.ListReflections)
	reflections.GET("/:date", r.handler.GetReflection)
	reflections.PUT("", validation.ValidateRequest(&dto.ReflectionRequest{}), cache.CacheInvalidate(reflectionsResource), r.handler.SaveReflection)
	reflections.POST("", validation.ValidateRequest(&dto.ReflectionRequest{}), cache.CacheInvalidate(reflectionsResource), r.handler.SaveReflection)

	checkIn := []gin.HandlerFunc{validation.ValidateRequest(&dto.CheckInRequest{})}
	if r.coachLimiter != nil {
		checkIn = append([]gin.HandlerFunc{middleware.RateLimitMiddleware(r.coachLimiter)}, checkIn...)
	}
	checkIn = append(checkIn, cache.CacheInvalidate(moodResource, reflectionsResource), r.handler.CheckIn)
	api.POST("/checkin", checkIn...)
}
