package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/events"
	"github.com/RangerDjanger/BetterDay/internal/domain/habits"
	"github.com/RangerDjanger/BetterDay/internal/domain/reminders"
	"github.com/RangerDjanger/BetterDay/internal/domain/settings"
	"github.com/RangerDjanger/BetterDay/pkg/logger"
	"go.uber.org/zap"
)

const rebuildInterval = time.Hour

// ReminderSink receives rebuilt reminder sets. *reminders.Scheduler
// implements it.
type ReminderSink interface {
	SetReminders(userID string, set []reminders.Reminder)
	Users() []string
}

// Scheduler keeps the reminder scheduler in step with stored settings and
// habits. It rebuilds every user's set at startup, hourly, and right after
// local midnight when the day's habit list changes.
type Scheduler struct {
	settingsService settings.Service
	habitService    habits.Service
	sink            ReminderSink
	loc             *time.Location
	logger          *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(settingsService settings.Service, habitService habits.Service, sink ReminderSink,
	loc *time.Location, log *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		settingsService: settingsService,
		habitService:    habitService,
		sink:            sink,
		loc:             loc,
		logger:          log,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	// Run immediately at startup
	s.RebuildAll(ctx)

	now := time.Now().In(s.loc)
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, s.loc)

	s.logger.Info("Reminder rebuild job initialized",
		zap.Time("current_time", now),
		zap.Time("next_midnight", nextMidnight),
		zap.Duration("interval", rebuildInterval),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(rebuildInterval)
		defer ticker.Stop()
		midnight := time.NewTimer(time.Until(nextMidnight))
		defer midnight.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RebuildAll(ctx)
			case <-midnight.C:
				s.RebuildAll(ctx)
				now := time.Now().In(s.loc)
				next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, s.loc)
				midnight.Reset(time.Until(next))
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
}

// RebuildAll refreshes every user with reminders enabled and drops users
// that turned them off.
func (s *Scheduler) RebuildAll(ctx context.Context) {
	startTime := time.Now()

	enabled, err := s.settingsService.ListRemindersEnabled(ctx)
	if err != nil {
		s.logger.Error("Failed to list users with reminders enabled", zap.Error(err))
		return
	}

	keep := make(map[string]bool, len(enabled))
	failed := 0
	for i := range enabled {
		keep[enabled[i].UserID] = true
		if err := s.rebuild(ctx, &enabled[i]); err != nil {
			failed++
			s.logger.Error("Failed to rebuild reminders",
				zap.String("user_id", enabled[i].UserID),
				zap.Error(err),
			)
		}
	}

	removed := 0
	for _, userID := range s.sink.Users() {
		if !keep[userID] {
			s.sink.SetReminders(userID, nil)
			removed++
		}
	}

	s.logger.Info("Rebuilt reminder sets",
		zap.Int("users", len(enabled)),
		zap.Int("failed", failed),
		zap.Int("removed", removed),
		zap.Duration("duration", time.Since(startTime)),
	)
}

// RebuildUser refreshes one user after their settings or habits change.
func (s *Scheduler) RebuildUser(ctx context.Context, userID string) error {
	prefs, err := s.settingsService.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !prefs.RemindersEnabled {
		s.sink.SetReminders(userID, nil)
		return nil
	}
	return s.rebuild(ctx, prefs)
}

// HandleEvent rebuilds the affected user when a domain event changes what
// their reminders should say. Other events are ignored.
func (s *Scheduler) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.EventTypeHabitUpdate, events.EventTypeUserDataCleared:
	default:
		return nil
	}
	if event.UserID == "" {
		return nil
	}
	if err := s.RebuildUser(ctx, event.UserID); err != nil {
		s.logger.Warn("Failed to rebuild reminders from event",
			zap.String("event_type", event.EventType),
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
	}
	return nil
}

// Plan builds the user's reminder set for today without installing it.
func (s *Scheduler) Plan(ctx context.Context, userID string) ([]reminders.Reminder, error) {
	prefs, err := s.settingsService.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, prefs)
}

func (s *Scheduler) rebuild(ctx context.Context, prefs *settings.Settings) error {
	set, err := s.build(ctx, prefs)
	if err != nil {
		return err
	}
	s.sink.SetReminders(prefs.UserID, set)
	return nil
}

func (s *Scheduler) build(ctx context.Context, prefs *settings.Settings) ([]reminders.Reminder, error) {
	list, err := s.habitService.ListHabits(ctx, prefs.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]reminders.Habit, 0, len(list))
	for i := range list {
		views = append(views, reminders.Habit{
			ID:           list[i].ID,
			Name:         list[i].Name,
			Description:  list[i].Description,
			ReminderTime: list[i].ReminderTime,
			ActiveDays:   list[i].Days(),
			Archived:     list[i].Archived,
		})
	}

	return reminders.BuildReminders(reminders.Preferences{
		MorningTime: prefs.MorningTime,
		EveningTime: prefs.EveningTime,
	}, views, time.Now().In(s.loc)), nil
}
