package coach

import (
	"context"
	"errors"
	"fmt"

	"github.com/RangerDjanger/BetterDay/internal/domain/events"
	"github.com/RangerDjanger/BetterDay/internal/domain/journal"
	"go.uber.org/zap"
)

// DayHabitSource lists a user's scheduled, non-archived habits for a date
// together with their completion state.
type DayHabitSource interface {
	DayHabits(ctx context.Context, userID, date string) ([]HabitDay, error)
}

// PersonalitySource resolves the user's chosen coach voice.
type PersonalitySource interface {
	CoachPersonality(ctx context.Context, userID string) (Personality, error)
}

// CheckInInput is the evening check-in submitted by the user.
type CheckInInput struct {
	Date        string `json:"date"`
	Morning     int    `json:"morning"`
	Evening     int    `json:"evening"`
	WentWell    string `json:"wentWell"`
	ToImprove   string `json:"toImprove"`
	Personality string `json:"personality,omitempty"`
}

// CheckInResult carries the saved records and the coach outcome. CoachErr is
// set when the message could not be produced; the records stay saved.
type CheckInResult struct {
	Mood        *journal.MoodEntry  `json:"mood"`
	Reflection  *journal.Reflection `json:"reflection"`
	Summary     DaySummary          `json:"summary"`
	Personality Personality         `json:"personality"`
	Message     string              `json:"message,omitempty"`
	CoachErr    error               `json:"-"`
}

type CheckInService struct {
	journal     journal.Service
	habits      DayHabitSource
	personality PersonalitySource
	coach       Service
	publisher   events.Publisher
	logger      *zap.Logger
}

func NewCheckInService(js journal.Service, habits DayHabitSource, personality PersonalitySource,
	coach Service, publisher events.Publisher, logger *zap.Logger) *CheckInService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckInService{
		journal:     js,
		habits:      habits,
		personality: personality,
		coach:       coach,
		publisher:   publisher,
		logger:      logger,
	}
}

// Complete saves the mood and the reflection, then asks the coach about the
// day. A save failure is returned as an error. A coach failure is reported
// in the result and never undoes the saves.
func (s *CheckInService) Complete(ctx context.Context, userID string, in CheckInInput) (*CheckInResult, error) {
	morning, evening := in.Morning, in.Evening
	existing, err := s.journal.GetMood(ctx, userID, in.Date)
	switch {
	case err == nil:
		if morning == 0 {
			morning = existing.Morning
		}
		if evening == 0 {
			evening = existing.Evening
		}
	case !errors.Is(err, journal.ErrMoodNotFound):
		return nil, err
	}

	mood, err := s.journal.SaveMood(ctx, userID, journal.MoodInput{
		Date:    in.Date,
		Morning: morning,
		Evening: evening,
	})
	if err != nil {
		return nil, err
	}

	reflection, err := s.journal.SaveReflection(ctx, userID, journal.ReflectionInput{
		Date:      in.Date,
		WentWell:  in.WentWell,
		ToImprove: in.ToImprove,
	})
	if err != nil {
		return nil, err
	}

	result := &CheckInResult{Mood: mood, Reflection: reflection}

	personality, err := s.resolvePersonality(ctx, userID, in.Personality)
	if err != nil {
		s.logger.Warn("Falling back to default coach personality",
			zap.String("user_id", userID), zap.Error(err))
	}
	result.Personality = personality

	habits, err := s.habits.DayHabits(ctx, userID, in.Date)
	if err != nil {
		result.CoachErr = fmt.Errorf("load habits for %s: %w", in.Date, err)
		return result, nil
	}

	result.Summary = BuildSummary(DayInput{
		Habits:    habits,
		Morning:   mood.Morning,
		Evening:   mood.Evening,
		WentWell:  reflection.WentWell,
		ToImprove: reflection.ToImprove,
	})

	result.Message, result.CoachErr = s.coach.Respond(ctx, personality, result.Summary)

	if s.publisher != nil {
		event := events.New(events.EventTypeCheckInCompleted, userID, in.Date, map[string]interface{}{
			"completed": len(result.Summary.CompletedHabits),
			"total":     result.Summary.TotalHabits,
			"coached":   result.CoachErr == nil,
		})
		if err := s.publisher.PublishDomainEvent(ctx, event); err != nil {
			s.logger.Error("Failed to publish check-in event", zap.Error(err))
		}
	}

	return result, nil
}

func (s *CheckInService) resolvePersonality(ctx context.Context, userID, override string) (Personality, error) {
	if override != "" {
		p, err := ParsePersonality(override)
		if err == nil {
			return p, nil
		}
		return DefaultPersonality, err
	}
	if s.personality == nil {
		return DefaultPersonality, nil
	}
	p, err := s.personality.CoachPersonality(ctx, userID)
	if err != nil || !p.Valid() {
		return DefaultPersonality, err
	}
	return p, nil
}
