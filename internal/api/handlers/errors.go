package handlers

import (
	"errors"
	"net/http"

	"github.com/RangerDjanger/BetterDay/internal/api/dto"
	"github.com/RangerDjanger/BetterDay/internal/api/middleware"
	"github.com/RangerDjanger/BetterDay/internal/domain/coach"
	"github.com/RangerDjanger/BetterDay/internal/domain/habits"
	"github.com/RangerDjanger/BetterDay/internal/domain/journal"
	"github.com/RangerDjanger/BetterDay/internal/domain/settings"
	"github.com/RangerDjanger/BetterDay/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var log = logger.NewLogger()

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, habits.ErrInvalidInput),
		errors.Is(err, journal.ErrInvalidInput),
		errors.Is(err, settings.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, habits.ErrHabitNotFound),
		errors.Is(err, habits.ErrLogNotFound),
		errors.Is(err, journal.ErrReflectionNotFound),
		errors.Is(err, journal.ErrMoodNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Internal errors are logged and
// their text is not exposed.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		c.JSON(status, dto.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}

// requireUser returns the caller's id or answers 401.
func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "user not authenticated"})
	}
	return userID, ok
}

// bindBody uses the model stored by the validation middleware and falls
// back to plain JSON binding when the middleware did not run.
func bindBody[T any](c *gin.Context) (*T, bool) {
	if model, ok := middleware.ValidatedModel[T](c); ok {
		return model, true
	}
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return &req, true
}

// coachErrorMessage turns a coach failure into text safe to show a user.
func coachErrorMessage(err error) string {
	var remote *coach.RemoteServiceError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, coach.ErrNotConfigured):
		return "coach is not configured"
	case errors.Is(err, coach.ErrEmptyResponse):
		return "coach returned an empty message"
	case errors.As(err, &remote):
		return "coach service is unavailable"
	default:
		return "coach could not be reached"
	}
}
