package handlers

import (
	"github.com/RangerDjanger/BetterDay/internal/api/dto"
	"github.com/RangerDjanger/BetterDay/internal/domain/habits"
	"github.com/RangerDjanger/BetterDay/internal/domain/settings"
	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
)

// Habits
func HabitToResponse(h *habits.Habit) *dto.HabitResponse {
	if h == nil {
		return nil
	}
	return &dto.HabitResponse{
		ID:           h.ID,
		Name:         h.Name,
		Description:  h.Description,
		Category:     h.Category,
		CreatedAt:    h.CreatedAt,
		ReminderTime: h.ReminderTime,
		ActiveDays:   h.Days(),
		Archived:     h.Archived,
	}
}

func HabitsToResponse(list []habits.Habit) []dto.HabitResponse {
	out := make([]dto.HabitResponse, 0, len(list))
	for i := range list {
		out = append(out, *HabitToResponse(&list[i]))
	}
	return out
}

func HabitRequestToInput(req *dto.HabitRequest) habits.HabitInput {
	return habits.HabitInput{
		ID:           req.ID,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		CreatedAt:    req.CreatedAt,
		ReminderTime: req.ReminderTime,
		ActiveDays:   req.ActiveDays,
		Archived:     req.Archived,
	}
}

// Logs
func LogToResponse(l *habits.HabitLog) *dto.HabitLogResponse {
	if l == nil {
		return nil
	}
	return &dto.HabitLogResponse{
		HabitID:   l.HabitID,
		Date:      l.Date,
		Completed: l.Completed,
	}
}

func LogsToResponse(list []habits.HabitLog) []dto.HabitLogResponse {
	out := make([]dto.HabitLogResponse, 0, len(list))
	for i := range list {
		out = append(out, *LogToResponse(&list[i]))
	}
	return out
}

func LogResultToResponse(r *habits.LogResult) *dto.LogWriteResponse {
	return &dto.LogWriteResponse{
		Log:       LogToResponse(r.Log),
		Removed:   r.Removed,
		Milestone: r.Milestone,
	}
}

// Stats
func StatsToResponse(habitID string, s *streaks.Stats) *dto.HabitStatsResponse {
	return &dto.HabitStatsResponse{
		HabitID:            habitID,
		TotalCompletions:   s.TotalCompletions,
		CurrentStreak:      s.CurrentStreak,
		BestStreak:         s.BestStreak,
		StreakGoal:         s.StreakGoal,
		StreakGoalComplete: s.StreakGoalComplete,
	}
}

// HeatmapToResponse adds the value range the client needs for shading.
func HeatmapToResponse(period string, data map[string]int) *dto.HeatmapResponse {
	resp := &dto.HeatmapResponse{Data: data, Period: period}
	if resp.Data == nil {
		resp.Data = map[string]int{}
	}
	first := true
	for _, v := range resp.Data {
		if first || v < resp.MinValue {
			resp.MinValue = v
		}
		if first || v > resp.MaxValue {
			resp.MaxValue = v
		}
		first = false
	}
	return resp
}

// Settings
func SettingsToResponse(s *settings.Settings) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		CoachPersonality: s.CoachPersonality,
		RemindersEnabled: s.RemindersEnabled,
		MorningTime:      s.MorningTime,
		EveningTime:      s.EveningTime,
		Email:            s.Email,
	}
}

func SettingsRequestToInput(req *dto.SettingsRequest) settings.Input {
	return settings.Input{
		CoachPersonality: req.CoachPersonality,
		RemindersEnabled: req.RemindersEnabled,
		MorningTime:      req.MorningTime,
		EveningTime:      req.EveningTime,
		Email:            req.Email,
	}
}
