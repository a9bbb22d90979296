package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/RangerDjanger/BetterDay/internal/api/dto"
	"github.com/RangerDjanger/BetterDay/internal/domain/coach"
	"github.com/RangerDjanger/BetterDay/internal/domain/journal"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckInCompleter runs the evening check-in. *coach.CheckInService
// implements it.
type CheckInCompleter interface {
	Complete(ctx context.Context, userID string, in coach.CheckInInput) (*coach.CheckInResult, error)
}

// JournalHandler serves mood entries, reflections and the coached check-in.
type JournalHandler struct {
	service journal.Service
	checkIn CheckInCompleter
}

func NewJournalHandler(service journal.Service, checkIn CheckInCompleter) *JournalHandler {
	return &JournalHandler{service: service, checkIn: checkIn}
}

func (h *JournalHandler) ListMoods(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	list, err := h.service.ListMoods(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []journal.MoodEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *JournalHandler) GetMood(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	date := c.Param("date")
	entry, err := h.service.GetMood(c.Request.Context(), userID, date)
	if errors.Is(err, journal.ErrMoodNotFound) {
		entry, err = &journal.MoodEntry{Date: date}, nil
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

// SaveMood upserts the entry for the body's date.
func (h *JournalHandler) SaveMood(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := bindBody[dto.MoodRequest](c)
	if !ok {
		return
	}

	entry, err := h.service.SaveMood(c.Request.Context(), userID, journal.MoodInput{
		Date:    req.Date,
		Morning: req.Morning,
		Evening: req.Evening,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (h *JournalHandler) ListReflections(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	list, err := h.service.ListReflections(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []journal.Reflection{}
	}

	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *JournalHandler) GetReflection(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	date := c.Param("date")
	refl, err := h.service.GetReflection(c.Request.Context(), userID, date)
	if errors.Is(err, journal.ErrReflectionNotFound) {
		refl, err = &journal.Reflection{Date: date}, nil
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": refl})
}

func (h *JournalHandler) SaveReflection(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := bindBody[dto.ReflectionRequest](c)
	if !ok {
		return
	}

	refl, err := h.service.SaveReflection(c.Request.Context(), userID, journal.ReflectionInput{
		Date:      req.Date,
		WentWell:  req.WentWell,
		ToImprove: req.ToImprove,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": refl})
}

// CheckIn godoc
// @Summary Save the evening check-in and ask the coach about the day
// @Description A coach failure still answers 200 with the saved records and coach_error set.
// @Tags journal
// @Accept json
// @Produce json
// @Param checkin body dto.CheckInRequest true "Check-in"
// @Success 200 {object} dto.CheckInResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /api/checkin [post]
func (h *JournalHandler) CheckIn(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := bindBody[dto.CheckInRequest](c)
	if !ok {
		return
	}

	result, err := h.checkIn.Complete(c.Request.Context(), userID, coach.CheckInInput{
		Date:        req.Date,
		Morning:     req.Morning,
		Evening:     req.Evening,
		WentWell:    req.WentWell,
		ToImprove:   req.ToImprove,
		Personality: req.Personality,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.CheckInResponse{
		Mood:        result.Mood,
		Reflection:  result.Reflection,
		Summary:     result.Summary,
		Personality: string(result.Personality),
		Message:     result.Message,
	}
	if result.CoachErr != nil {
		log.Warn("Coach unavailable for check-in", zap.String("user_id", userID), zap.Error(result.CoachErr))
		resp.Message = ""
		resp.CoachError = coachErrorMessage(result.CoachErr)
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
