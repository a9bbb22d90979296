package handlers

import (
	"context"
	"net/http"

	"github.com/RangerDjanger/BetterDay/internal/api/dto"
	"github.com/RangerDjanger/BetterDay/internal/domain/reminders"
	"github.com/RangerDjanger/BetterDay/internal/domain/settings"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReminderRefresher rebuilds a user's reminder set after a change.
type ReminderRefresher interface {
	RebuildUser(ctx context.Context, userID string) error
}

// ReminderPlanner previews and installs a user's reminder set.
// *scheduler.Scheduler implements it.
type ReminderPlanner interface {
	ReminderRefresher
	Plan(ctx context.Context, userID string) ([]reminders.Reminder, error)
}

type SettingsHandler struct {
	service   settings.Service
	reminders ReminderPlanner
}

// NewSettingsHandler creates the handler. reminders may be nil, which
// disables the preview endpoint.
func NewSettingsHandler(service settings.Service, reminders ReminderPlanner) *SettingsHandler {
	return &SettingsHandler{service: service, reminders: reminders}
}

// GetSettings answers the defaults for a user who never saved any.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	s, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": SettingsToResponse(s)})
}

func (h *SettingsHandler) SaveSettings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := bindBody[dto.SettingsRequest](c)
	if !ok {
		return
	}

	s, err := h.service.Save(c.Request.Context(), userID, SettingsRequestToInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	if h.reminders != nil {
		if err := h.reminders.RebuildUser(c.Request.Context(), userID); err != nil {
			log.Warn("Failed to rebuild reminders after settings change", zap.String("user_id", userID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": SettingsToResponse(s)})
}

// PreviewReminders lists what the scheduler would fire for the caller
// today, whether or not reminders are enabled.
func (h *SettingsHandler) PreviewReminders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if h.reminders == nil {
		c.JSON(http.StatusOK, gin.H{"data": []reminders.Reminder{}})
		return
	}

	set, err := h.reminders.Plan(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": set})
}
