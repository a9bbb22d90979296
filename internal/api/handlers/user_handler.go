package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DataClearer removes everything one service stores for a user.
type DataClearer interface {
	ClearUserData(ctx context.Context, userID string) error
}

type UserHandler struct {
	clearers  []DataClearer
	reminders ReminderRefresher
}

// NewUserHandler clears data from each store in order. reminders may be nil.
func NewUserHandler(reminders ReminderRefresher, clearers ...DataClearer) *UserHandler {
	return &UserHandler{clearers: clearers, reminders: reminders}
}

// GetMe reports the identity the request was authenticated as.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"userId":           userID,
		"identityProvider": c.GetString("identity_provider"),
	}})
}

// ClearData godoc
// @Summary Delete all of the caller's habits, logs, journal and settings
// @Tags users
// @Success 204
// @Router /api/me/data [delete]
func (h *UserHandler) ClearData(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	for _, store := range h.clearers {
		if err := store.ClearUserData(c.Request.Context(), userID); err != nil {
			respondError(c, err)
			return
		}
	}
	if h.reminders != nil {
		if err := h.reminders.RebuildUser(c.Request.Context(), userID); err != nil {
			log.Warn("Failed to drop reminders", zap.String("user_id", userID), zap.Error(err))
		}
	}
	log.Info("Cleared user data", zap.String("user_id", userID))

	c.Status(http.StatusNoContent)
}
