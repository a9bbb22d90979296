package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/coach"
	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
	"github.com/RangerDjanger/BetterDay/internal/infrastructure/cache"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const cacheTTL = time.Hour

var validate = validator.New()

type Service interface {
	Get(ctx context.Context, userID string) (*Settings, error)
	Save(ctx context.Context, userID string, input Input) (*Settings, error)
	ListRemindersEnabled(ctx context.Context) ([]Settings, error)
	CoachPersonality(ctx context.Context, userID string) (coach.Personality, error)
	ClearUserData(ctx context.Context, userID string) error
}

type service struct {
	repo   Repository
	redis  *cache.RedisClient
	logger *zap.Logger
}

// NewService creates the settings service. redis may be nil.
func NewService(repo Repository, redis *cache.RedisClient, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{repo: repo, redis: redis, logger: logger}
}

func cacheKey(userID string) string {
	return cache.GenerateCacheKey("settings", userID)
}

func normalize(userID string, in Input) (*Settings, error) {
	s := Defaults(userID)
	s.RemindersEnabled = in.RemindersEnabled

	personality, err := coach.ParsePersonality(in.CoachPersonality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	s.CoachPersonality = string(personality)

	if in.MorningTime != "" {
		if !streaks.ValidClock(in.MorningTime) {
			return nil, fmt.Errorf("%w: morningTime must be HH:MM", ErrInvalidInput)
		}
		s.MorningTime = in.MorningTime
	}
	if in.EveningTime != "" {
		if !streaks.ValidClock(in.EveningTime) {
			return nil, fmt.Errorf("%w: eveningTime must be HH:MM", ErrInvalidInput)
		}
		s.EveningTime = in.EveningTime
	}

	if err := validate.Var(in.Email, "omitempty,email"); err != nil {
		return nil, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	s.Email = in.Email

	return &s, nil
}

func (s *service) Get(ctx context.Context, userID string) (*Settings, error) {
	if s.redis != nil {
		var cached Settings
		if hit, err := s.redis.GetJSON(ctx, cacheKey(userID), "settings", &cached); err == nil && hit {
			cached.UserID = userID
			return &cached, nil
		}
	}

	found, err := s.repo.Find(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrSettingsNotFound) {
			return nil, err
		}
		defaults := Defaults(userID)
		found = &defaults
	}

	s.store(ctx, found)
	return found, nil
}

func (s *service) Save(ctx context.Context, userID string, input Input) (*Settings, error) {
	settings, err := normalize(userID, input)
	if err != nil {
		return nil, err
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	s.store(ctx, settings)
	s.logger.Info("Saved settings",
		zap.String("user_id", userID),
		zap.String("coach_personality", settings.CoachPersonality),
		zap.Bool("reminders_enabled", settings.RemindersEnabled))
	return settings, nil
}

func (s *service) store(ctx context.Context, settings *Settings) {
	if s.redis == nil {
		return
	}
	if err := s.redis.SetJSON(ctx, cacheKey(settings.UserID), settings, cacheTTL); err != nil {
		s.logger.Warn("Failed to cache settings", zap.String("user_id", settings.UserID), zap.Error(err))
	}
}

func (s *service) ListRemindersEnabled(ctx context.Context) ([]Settings, error) {
	return s.repo.FindRemindersEnabled(ctx)
}

func (s *service) CoachPersonality(ctx context.Context, userID string) (coach.Personality, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return coach.DefaultPersonality, err
	}
	p, err := coach.ParsePersonality(settings.CoachPersonality)
	if err != nil {
		return coach.DefaultPersonality, nil
	}
	return p, nil
}

func (s *service) ClearUserData(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	if s.redis != nil {
		if err := s.redis.Delete(ctx, cacheKey(userID)); err != nil {
			s.logger.Warn("Failed to drop cached settings", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}
