package habits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/coach"
	"github.com/RangerDjanger/BetterDay/internal/domain/events"
	"github.com/RangerDjanger/BetterDay/internal/domain/milestones"
	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
	"github.com/RangerDjanger/BetterDay/internal/infrastructure/cache"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultStatsTTL = 10 * time.Minute

type Service interface {
	CreateHabit(ctx context.Context, userID string, input HabitInput) (*Habit, error)
	GetHabit(ctx context.Context, userID, id string) (*Habit, error)
	ListHabits(ctx context.Context, userID string) ([]Habit, error)
	UpdateHabit(ctx context.Context, userID, id string, input HabitInput) (*Habit, error)
	DeleteHabit(ctx context.Context, userID, id string) error
	SetArchived(ctx context.Context, userID, id string, archived bool) (*Habit, error)
	GetTodaysHabits(ctx context.Context, userID string) ([]Habit, error)
	SeedHabits(ctx context.Context, userID string) ([]Habit, error)

	ListLogs(ctx context.Context, userID, habitID string) ([]HabitLog, error)
	SetLog(ctx context.Context, userID, habitID string, input LogInput) (*LogResult, error)
	ToggleLog(ctx context.Context, userID, habitID, date string) (*LogResult, error)

	GetStats(ctx context.Context, userID, habitID string) (*streaks.Stats, error)
	GetMilestones(ctx context.Context, userID, habitID string) ([]milestones.Milestone, error)
	GetHeatmapData(ctx context.Context, userID, period string) (map[string]int, error)
	GetActivitySummary(ctx context.Context, userID string, since time.Time) (*ActivitySummary, error)

	// DayHabits feeds the coach check-in.
	DayHabits(ctx context.Context, userID, date string) ([]coach.HabitDay, error)
	ClearUserData(ctx context.Context, userID string) error
}

// Option configures optional collaborators of the service.
type Option func(*service)

// WithPublisher overrides where domain events are sent. By default the Redis
// client is used when one is supplied.
func WithPublisher(p events.Publisher) Option {
	return func(s *service) { s.publisher = p }
}

// WithStatsTTL sets how long computed stats stay cached.
func WithStatsTTL(ttl time.Duration) Option {
	return func(s *service) {
		if ttl > 0 {
			s.statsTTL = ttl
		}
	}
}

type service struct {
	repo      Repository
	engine    *streaks.Engine
	tracker   *milestones.Tracker
	redis     *cache.RedisClient
	publisher events.Publisher
	statsTTL  time.Duration
	logger    *zap.Logger
}

// NewService wires the habit service. redis may be nil, in which case stats
// are always recomputed and events are dropped unless WithPublisher is given.
func NewService(repo Repository, engine *streaks.Engine, tracker *milestones.Tracker,
	redis *cache.RedisClient, logger *zap.Logger, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = streaks.NewEngine(nil)
	}
	s := &service{
		repo:     repo,
		engine:   engine,
		tracker:  tracker,
		redis:    redis,
		statsTTL: defaultStatsTTL,
		logger:   logger,
	}
	if redis != nil {
		s.publisher = redis
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateHabit(input HabitInput) error {
	if input.ReminderTime != "" && !streaks.ValidClock(input.ReminderTime) {
		return fmt.Errorf("%w: reminderTime must be HH:MM", ErrInvalidInput)
	}
	for _, d := range input.ActiveDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: activeDays entries must be 0-6, got %d", ErrInvalidInput, d)
		}
	}
	return nil
}

func newHabit(userID, id string, input HabitInput) *Habit {
	days := make(pq.Int64Array, 0, len(input.ActiveDays))
	for _, d := range input.ActiveDays {
		days = append(days, int64(d))
	}
	h := &Habit{
		UserID:       userID,
		ID:           id,
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		ReminderTime: input.ReminderTime,
		ActiveDays:   days,
		Archived:     input.Archived,
	}
	if input.CreatedAt != nil {
		h.CreatedAt = input.CreatedAt.UTC()
	}
	return h
}

func (s *service) CreateHabit(ctx context.Context, userID string, input HabitInput) (*Habit, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := validateHabit(input); err != nil {
		return nil, err
	}

	habit := newHabit(userID, input.ID, input)
	if err := s.repo.Upsert(ctx, habit); err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}

	s.recordActivity(ctx, userID, habit.ID, ActionHabitCreated, map[string]interface{}{
		"name":     habit.Name,
		"category": habit.Category,
	})
	s.publish(ctx, events.New(events.EventTypeHabitUpdate, userID, habit.ID, map[string]interface{}{
		"action": ActionHabitCreated,
		"name":   habit.Name,
	}))
	return habit, nil
}

func (s *service) GetHabit(ctx context.Context, userID, id string) (*Habit, error) {
	return s.repo.Find(ctx, userID, id)
}

func (s *service) ListHabits(ctx context.Context, userID string) ([]Habit, error) {
	return s.repo.List(ctx, userID)
}

// UpdateHabit replaces the habit wholesale; the last write wins. The
// creation time is kept when the body does not carry one.
func (s *service) UpdateHabit(ctx context.Context, userID, id string, input HabitInput) (*Habit, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := validateHabit(input); err != nil {
		return nil, err
	}

	habit := newHabit(userID, id, input)
	if habit.CreatedAt.IsZero() {
		existing, err := s.repo.Find(ctx, userID, id)
		switch {
		case err == nil:
			habit.CreatedAt = existing.CreatedAt
		case !errors.Is(err, ErrHabitNotFound):
			return nil, err
		}
	}

	if err := s.repo.Upsert(ctx, habit); err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}

	s.invalidateStats(ctx, userID, id)
	s.recordActivity(ctx, userID, id, ActionHabitUpdated, map[string]interface{}{
		"name":        habit.Name,
		"active_days": input.ActiveDays,
	})
	s.publish(ctx, events.New(events.EventTypeHabitUpdate, userID, id, map[string]interface{}{
		"action": ActionHabitUpdated,
	}))
	return habit, nil
}

func (s *service) DeleteHabit(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if s.tracker != nil {
		key := milestones.Key{UserID: userID, HabitID: id}
		if err := s.tracker.Reset(ctx, key); err != nil {
			return fmt.Errorf("delete habit: %w", err)
		}
	}
	s.invalidateStats(ctx, userID, id)
	s.publish(ctx, events.New(events.EventTypeHabitUpdate, userID, id, map[string]interface{}{
		"action": ActionHabitDeleted,
	}))
	return nil
}

func (s *service) SetArchived(ctx context.Context, userID, id string, archived bool) (*Habit, error) {
	if err := s.repo.SetArchived(ctx, userID, id, archived); err != nil {
		return nil, err
	}
	action := ActionHabitUnarchived
	if archived {
		action = ActionHabitArchived
	}
	s.recordActivity(ctx, userID, id, action, nil)
	s.publish(ctx, events.New(events.EventTypeHabitUpdate, userID, id, map[string]interface{}{
		"action": action,
	}))
	return s.repo.Find(ctx, userID, id)
}

// GetTodaysHabits returns the habits that are not archived and scheduled on
// the engine's today.
func (s *service) GetTodaysHabits(ctx context.Context, userID string) ([]Habit, error) {
	all, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return scheduledOn(all, s.engine.Today()), nil
}

func scheduledOn(all []Habit, date time.Time) []Habit {
	out := make([]Habit, 0, len(all))
	for i := range all {
		if !all[i].Archived && all[i].ActiveOn(date) {
			out = append(out, all[i])
		}
	}
	return out
}

// SeedHabits installs the starter set, skipping any seed habit the user
// already has so edits are never overwritten.
func (s *service) SeedHabits(ctx context.Context, userID string) ([]Habit, error) {
	existing, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, h := range existing {
		have[h.ID] = true
	}

	created := make([]Habit, 0, len(SeedHabits))
	for _, input := range SeedHabits {
		if have[input.ID] {
			continue
		}
		habit := newHabit(userID, input.ID, input)
		if err := s.repo.Upsert(ctx, habit); err != nil {
			return created, fmt.Errorf("seed habit %s: %w", input.ID, err)
		}
		created = append(created, *habit)
	}

	s.logger.Info("Seeded habits",
		zap.String("user_id", userID),
		zap.Int("created", len(created)),
		zap.Int("skipped", len(SeedHabits)-len(created)))
	return created, nil
}

func (s *service) ListLogs(ctx context.Context, userID, habitID string) ([]HabitLog, error) {
	return s.repo.ListLogs(ctx, userID, habitID)
}

func (s *service) SetLog(ctx context.Context, userID, habitID string, input LogInput) (*LogResult, error) {
	if !streaks.ValidDate(input.Date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	habit, err := s.repo.Find(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	log := &HabitLog{UserID: userID, HabitID: habitID, Date: input.Date, Completed: input.Completed}
	if err := s.repo.UpsertLog(ctx, log); err != nil {
		return nil, fmt.Errorf("save habit log: %w", err)
	}
	return s.afterLogWrite(ctx, habit, &LogResult{Log: log}), nil
}

// ToggleLog flips the completion for a date: a completed record is removed,
// an absent or incomplete one becomes completed.
func (s *service) ToggleLog(ctx context.Context, userID, habitID, date string) (*LogResult, error) {
	if !streaks.ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	habit, err := s.repo.Find(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindLog(ctx, userID, habitID, date)
	if err != nil && !errors.Is(err, ErrLogNotFound) {
		return nil, err
	}

	if existing != nil && existing.Completed {
		if err := s.repo.DeleteLog(ctx, userID, habitID, date); err != nil {
			return nil, fmt.Errorf("remove habit log: %w", err)
		}
		return s.afterLogWrite(ctx, habit, &LogResult{Removed: true}), nil
	}

	log := &HabitLog{UserID: userID, HabitID: habitID, Date: date, Completed: true}
	if err := s.repo.UpsertLog(ctx, log); err != nil {
		return nil, fmt.Errorf("save habit log: %w", err)
	}
	return s.afterLogWrite(ctx, habit, &LogResult{Log: log}), nil
}

// afterLogWrite runs the side effects of a log change. Failures are logged
// and never undo the write.
func (s *service) afterLogWrite(ctx context.Context, habit *Habit, result *LogResult) *LogResult {
	s.invalidateStats(ctx, habit.UserID, habit.ID)

	action := ActionHabitUncompleted
	details := map[string]interface{}{"removed": result.Removed}
	if result.Log != nil {
		details["date"] = result.Log.Date
		details["completed"] = result.Log.Completed
		if result.Log.Completed {
			action = ActionHabitCompleted
		}
	}
	s.recordActivity(ctx, habit.UserID, habit.ID, action, details)
	s.publish(ctx, events.New(events.EventTypeLogUpdate, habit.UserID, habit.ID, details))

	if label, ok := s.checkMilestone(ctx, habit); ok {
		result.Milestone = label
	}
	return result
}

func (s *service) checkMilestone(ctx context.Context, habit *Habit) (string, bool) {
	if s.tracker == nil {
		return "", false
	}
	logs, err := s.repo.ListLogs(ctx, habit.UserID, habit.ID)
	if err != nil {
		s.logger.Warn("Failed to load logs for milestone check",
			zap.String("habit_id", habit.ID), zap.Error(err))
		return "", false
	}

	key := milestones.Key{UserID: habit.UserID, HabitID: habit.ID}
	threshold, ok, err := s.tracker.CheckNewMilestone(ctx, key, habit.Days(), toStreakLogs(logs))
	if err != nil {
		s.logger.Warn("Milestone check failed",
			zap.String("habit_id", habit.ID), zap.Error(err))
		return "", false
	}
	if !ok {
		return "", false
	}

	s.logger.Info("Milestone achieved",
		zap.String("user_id", habit.UserID),
		zap.String("habit_id", habit.ID),
		zap.Int("days", threshold.Days))
	s.recordActivity(ctx, habit.UserID, habit.ID, ActionStreakMilestone, map[string]interface{}{
		"days":  threshold.Days,
		"label": threshold.Label,
	})
	s.publish(ctx, events.New(events.EventTypeMilestoneAchieved, habit.UserID, habit.ID, map[string]interface{}{
		"days":  threshold.Days,
		"label": threshold.Label,
		"habit": habit.Name,
	}))
	return threshold.Label, true
}

func statsKey(userID, habitID, today string) string {
	return cache.GenerateCacheKey("stats", userID, habitID, today)
}

func (s *service) GetStats(ctx context.Context, userID, habitID string) (*streaks.Stats, error) {
	habit, err := s.repo.Find(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	key := statsKey(userID, habitID, streaks.FormatDate(s.engine.Today()))
	if s.redis != nil {
		var cached streaks.Stats
		if hit, err := s.redis.GetJSON(ctx, key, "stats", &cached); err == nil && hit {
			return &cached, nil
		}
	}

	logs, err := s.repo.ListLogs(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	stats := s.engine.Stats(habitID, habit.Days(), toStreakLogs(logs))

	if s.redis != nil {
		if err := s.redis.SetJSON(ctx, key, stats, s.statsTTL); err != nil {
			s.logger.Warn("Failed to cache stats", zap.String("habit_id", habitID), zap.Error(err))
		}
	}
	return &stats, nil
}

func (s *service) invalidateStats(ctx context.Context, userID, habitID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.ClearByPattern(ctx, cache.GenerateCacheKey("stats", userID, habitID, "*")); err != nil {
		s.logger.Warn("Failed to invalidate stats cache",
			zap.String("habit_id", habitID), zap.Error(err))
	}
}

func (s *service) GetMilestones(ctx context.Context, userID, habitID string) ([]milestones.Milestone, error) {
	habit, err := s.repo.Find(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.ListLogs(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	if s.tracker == nil {
		return nil, errors.New("milestone tracker not configured")
	}
	key := milestones.Key{UserID: userID, HabitID: habitID}
	return s.tracker.MilestonesForHabit(ctx, key, habit.Days(), toStreakLogs(logs))
}

// GetHeatmapData counts completed logs per date over the period ending today.
func (s *service) GetHeatmapData(ctx context.Context, userID, period string) (map[string]int, error) {
	today := s.engine.Today()
	var startDate time.Time

	switch period {
	case "year", "":
		startDate = today.AddDate(-1, 0, 0)
	case "month":
		startDate = today.AddDate(0, -1, 0)
	case "week":
		startDate = today.AddDate(0, 0, -7)
	default:
		return nil, fmt.Errorf("%w: period must be week, month or year", ErrInvalidInput)
	}

	return s.repo.GetHeatmapData(ctx, userID, streaks.FormatDate(startDate), streaks.FormatDate(today))
}

func (s *service) GetActivitySummary(ctx context.Context, userID string, since time.Time) (*ActivitySummary, error) {
	end := time.Now().UTC()
	counts, err := s.repo.GetUserActivitySummary(ctx, userID, since, end)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return &ActivitySummary{
		ActionCounts: counts,
		StartTime:    since,
		EndTime:      end,
		TotalActions: total,
	}, nil
}

func (s *service) DayHabits(ctx context.Context, userID, date string) ([]coach.HabitDay, error) {
	day, err := streaks.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	all, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.ListLogsByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	completed := make(map[string]bool, len(logs))
	for _, l := range logs {
		completed[l.HabitID] = l.Completed
	}

	scheduled := scheduledOn(all, day)
	out := make([]coach.HabitDay, 0, len(scheduled))
	for _, h := range scheduled {
		out = append(out, coach.HabitDay{Name: h.Name, Completed: completed[h.ID]})
	}
	return out, nil
}

func (s *service) ClearUserData(ctx context.Context, userID string) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear habits: %w", err)
	}
	if s.tracker != nil {
		if err := s.tracker.ResetUser(ctx, userID); err != nil {
			return fmt.Errorf("clear habits: %w", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.ClearByPattern(ctx, cache.GenerateCacheKey("stats", userID, "*")); err != nil {
			s.logger.Warn("Failed to clear stats cache", zap.String("user_id", userID), zap.Error(err))
		}
	}
	s.publish(ctx, events.New(events.EventTypeUserDataCleared, userID, "", nil))
	return nil
}

func (s *service) recordActivity(ctx context.Context, userID, habitID, action string, metadata map[string]interface{}) {
	if err := s.repo.RecordHabitActivity(ctx, newActivity(userID, habitID, action, metadata)); err != nil {
		s.logger.Warn("Failed to record habit activity",
			zap.String("habit_id", habitID),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *service) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishDomainEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish domain event",
			zap.String("event_type", event.EventType), zap.Error(err))
	}
}
