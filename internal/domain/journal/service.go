package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
	"go.uber.org/zap"
)

type Service interface {
	SaveReflection(ctx context.Context, userID string, input ReflectionInput) (*Reflection, error)
	GetReflection(ctx context.Context, userID, date string) (*Reflection, error)
	ListReflections(ctx context.Context, userID string) ([]Reflection, error)

	SaveMood(ctx context.Context, userID string, input MoodInput) (*MoodEntry, error)
	GetMood(ctx context.Context, userID, date string) (*MoodEntry, error)
	ListMoods(ctx context.Context, userID string) ([]MoodEntry, error)

	ClearUserData(ctx context.Context, userID string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{repo: repo, logger: logger}
}

func validateDate(date string) error {
	if date == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if !streaks.ValidDate(date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return nil
}

func validateMood(slot string, score int) error {
	if score == 0 {
		return nil
	}
	if score < MinMood || score > MaxMood {
		return fmt.Errorf("%w: %s mood must be between %d and %d", ErrInvalidInput, slot, MinMood, MaxMood)
	}
	return nil
}

func (s *service) SaveReflection(ctx context.Context, userID string, input ReflectionInput) (*Reflection, error) {
	if err := validateDate(input.Date); err != nil {
		return nil, err
	}

	refl := &Reflection{
		UserID:    userID,
		Date:      input.Date,
		WentWell:  input.WentWell,
		ToImprove: input.ToImprove,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.UpsertReflection(ctx, refl); err != nil {
		return nil, fmt.Errorf("save reflection: %w", err)
	}

	s.logger.Debug("Saved reflection",
		zap.String("user_id", userID),
		zap.String("date", input.Date))
	return refl, nil
}

func (s *service) GetReflection(ctx context.Context, userID, date string) (*Reflection, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.repo.FindReflection(ctx, userID, date)
}

func (s *service) ListReflections(ctx context.Context, userID string) ([]Reflection, error) {
	return s.repo.ListReflections(ctx, userID)
}

func (s *service) SaveMood(ctx context.Context, userID string, input MoodInput) (*MoodEntry, error) {
	if err := validateDate(input.Date); err != nil {
		return nil, err
	}
	if err := validateMood("morning", input.Morning); err != nil {
		return nil, err
	}
	if err := validateMood("evening", input.Evening); err != nil {
		return nil, err
	}

	entry := &MoodEntry{
		UserID:    userID,
		Date:      input.Date,
		Morning:   input.Morning,
		Evening:   input.Evening,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.UpsertMood(ctx, entry); err != nil {
		return nil, fmt.Errorf("save mood: %w", err)
	}

	s.logger.Debug("Saved mood entry",
		zap.String("user_id", userID),
		zap.String("date", input.Date),
		zap.Int("morning", input.Morning),
		zap.Int("evening", input.Evening))
	return entry, nil
}

func (s *service) GetMood(ctx context.Context, userID, date string) (*MoodEntry, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.repo.FindMood(ctx, userID, date)
}

func (s *service) ListMoods(ctx context.Context, userID string) ([]MoodEntry, error) {
	return s.repo.ListMoods(ctx, userID)
}

func (s *service) ClearUserData(ctx context.Context, userID string) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear journal: %w", err)
	}
	return nil
}
