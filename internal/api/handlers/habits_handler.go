package handlers

import (
	"net/http"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/api/dto"
	"github.com/RangerDjanger/BetterDay/internal/api/middleware"
	"github.com/RangerDjanger/BetterDay/internal/domain/habits"
	"github.com/gin-gonic/gin"
)

const defaultActivityDays = 30

// HabitsHandler handles HTTP requests for habits operations. Reminder sets
// follow habit changes through the habit_update event.
type HabitsHandler struct {
	service habits.Service
	now     func() time.Time
}

// NewHabitsHandler creates a new HabitsHandler instance
func NewHabitsHandler(service habits.Service) *HabitsHandler {
	return &HabitsHandler{service: service, now: time.Now}
}

// CreateHabit godoc
// @Summary Create a new habit
// @Tags habits
// @Accept json
// @Produce json
// @Param habit body dto.HabitRequest true "Habit"
// @Success 201 {object} dto.HabitResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/habits [post]
func (h *HabitsHandler) CreateHabit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := bindBody[dto.HabitRequest](c)
	if !ok {
		return
	}

	habit, err := h.service.CreateHabit(c.Request.Context(), userID, HabitRequestToInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": HabitToResponse(habit)})
}

// GetHabit godoc
// @Summary Get a habit by ID
// @Tags habits
// @Produce json
// @Param id path string true "Habit ID"
// @Success 200 {object} dto.HabitResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/habits/{id} [get]
func (h *HabitsHandler) GetHabit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	habit, err := h.service.GetHabit(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": HabitToResponse(habit)})
}

// ListHabits godoc
// @Summary List the caller's habits, archived included
// @Tags habits
// @Produce json
// @Success 200 {object} dto.HabitListResponse
// @Router /api/habits [get]
func (h *HabitsHandler) ListHabits(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	list, err := h.service.ListHabits(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.HabitListResponse{
		Habits:     HabitsToResponse(list),
		TotalCount: len(list),
	}})
}

// UpdateHabit replaces the habit; the last write wins.
func (h *HabitsHandler) UpdateHabit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := bindBody[dto.HabitRequest](c)
	if !ok {
		return
	}

	habit, err := h.service.UpdateHabit(c.Request.Context(), userID, c.Param("id"), HabitRequestToInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": HabitToResponse(habit)})
}

// DeleteHabit answers 204 whether or not the habit existed.
func (h *HabitsHandler) DeleteHabit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteHabit(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HabitsHandler) SetArchived(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := bindBody[dto.ArchiveRequest](c)
	if !ok {
		return
	}

	habit, err := h.service.SetArchived(c.Request.Context(), userID, c.Param("id"), req.Archived)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": HabitToResponse(habit)})
}

// GetTodaysHabits lists the habits scheduled today that are not archived.
func (h *HabitsHandler) GetTodaysHabits(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	list, err := h.service.GetTodaysHabits(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": HabitsToResponse(list)})
}

// SeedHabits installs the default habit set and returns what was added.
func (h *HabitsHandler) SeedHabits(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	created, err := h.service.SeedHabits(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": HabitsToResponse(created)})
}

func (h *HabitsHandler) ListLogs(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	logs, err := h.service.ListLogs(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": LogsToResponse(logs)})
}

// SetLog godoc
// @Summary Record completion of a habit on a date
// @Tags habits
// @Accept json
// @Produce json
// @Param id path string true "Habit ID"
// @Param log body dto.LogRequest true "Log"
// @Success 200 {object} dto.LogWriteResponse
// @Router /api/habits/{id}/logs [post]
func (h *HabitsHandler) SetLog(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := bindBody[dto.LogRequest](c)
	if !ok {
		return
	}

	result, err := h.service.SetLog(c.Request.Context(), userID, c.Param("id"), habits.LogInput{
		Date:      req.Date,
		Completed: req.Completed,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": LogResultToResponse(result)})
}

func (h *HabitsHandler) ToggleLog(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := bindBody[dto.ToggleRequest](c)
	if !ok {
		return
	}

	result, err := h.service.ToggleLog(c.Request.Context(), userID, c.Param("id"), req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": LogResultToResponse(result)})
}

// GetHabitStats godoc
// @Summary Streak statistics of one habit
// @Tags habits
// @Produce json
// @Param id path string true "Habit ID"
// @Success 200 {object} dto.HabitStatsResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/habits/{id}/stats [get]
func (h *HabitsHandler) GetHabitStats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	habitID := c.Param("id")

	stats, err := h.service.GetStats(c.Request.Context(), userID, habitID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": StatsToResponse(habitID, stats)})
}

func (h *HabitsHandler) GetMilestones(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	habitID := c.Param("id")

	list, err := h.service.GetMilestones(c.Request.Context(), userID, habitID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.MilestonesResponse{HabitID: habitID, Milestones: list}})
}

// GetHabitHeatmap godoc
// @Summary Completed habits per day over a period
// @Tags habits
// @Produce json
// @Param period query string false "week, month or year" default(year)
// @Success 200 {object} dto.HeatmapResponse
// @Router /api/habits/heatmap [get]
func (h *HabitsHandler) GetHabitHeatmap(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	period := c.Query("period")
	if q, ok := middleware.ValidatedQuery[dto.HeatmapQuery](c); ok {
		period = q.Period
	}

	data, err := h.service.GetHeatmapData(c.Request.Context(), userID, period)
	if err != nil {
		respondError(c, err)
		return
	}
	if period == "" {
		period = "year"
	}

	c.JSON(http.StatusOK, gin.H{"data": HeatmapToResponse(period, data)})
}

// GetActivitySummary counts the caller's habit actions over the last days.
func (h *HabitsHandler) GetActivitySummary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	days := defaultActivityDays
	if q, ok := middleware.ValidatedQuery[dto.ActivityQuery](c); ok && q.Days > 0 {
		days = q.Days
	}

	summary, err := h.service.GetActivitySummary(c.Request.Context(), userID, h.now().AddDate(0, 0, -days))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
