package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// DefaultInterval is how often the scheduler checks for due reminders.
const DefaultInterval = 30 * time.Second

var remindersFired = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reminders_fired_total",
		Help: "Reminders delivered by the scheduler",
	},
	[]string{"result"},
)

// Notifier delivers a due reminder to a user.
type Notifier interface {
	Notify(ctx context.Context, userID string, r Reminder, firedAt time.Time) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, userID string, r Reminder, firedAt time.Time) error

func (f NotifierFunc) Notify(ctx context.Context, userID string, r Reminder, firedAt time.Time) error {
	return f(ctx, userID, r, firedAt)
}

// Scheduler fires reminders at their wall-clock minute. Each instance owns
// its reminder sets and de-duplication state.
type Scheduler struct {
	notifier Notifier
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger

	mu          sync.Mutex
	reminders   map[string][]Reminder
	firedMinute string
	fired       map[string]struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that checks every interval in loc.
func NewScheduler(notifier Notifier, interval time.Duration, loc *time.Location, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		notifier:  notifier,
		interval:  interval,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
		reminders: make(map[string][]Reminder),
		fired:     make(map[string]struct{}),
	}
}

// SetReminders replaces a user's reminder set. An empty set removes the user.
func (s *Scheduler) SetReminders(userID string, reminders []Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(reminders) == 0 {
		delete(s.reminders, userID)
		return
	}
	s.reminders[userID] = append([]Reminder(nil), reminders...)
}

// Reminders returns a copy of the user's current set.
func (s *Scheduler) Reminders(userID string) []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reminder(nil), s.reminders[userID]...)
}

// Users returns the ids that currently hold reminders.
func (s *Scheduler) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.reminders))
	for id := range s.reminders {
		ids = append(ids, id)
	}
	return ids
}

type dueReminder struct {
	userID   string
	reminder Reminder
}

// Tick delivers every reminder due at now that has not already fired this
// minute, and reports how many were delivered.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	now = now.In(s.loc)
	minute := streaks.FormatDate(now) + " " + now.Format(streaks.ClockLayout)

	s.mu.Lock()
	if minute != s.firedMinute {
		s.firedMinute = minute
		s.fired = make(map[string]struct{})
	}
	var due []dueReminder
	for userID, set := range s.reminders {
		for _, r := range set {
			if !r.Due(now) {
				continue
			}
			key := userID + "|" + r.firedKey(now)
			if _, done := s.fired[key]; done {
				continue
			}
			s.fired[key] = struct{}{}
			due = append(due, dueReminder{userID: userID, reminder: r})
		}
	}
	s.mu.Unlock()

	delivered := 0
	for _, d := range due {
		if err := s.notifier.Notify(ctx, d.userID, d.reminder, now); err != nil {
			remindersFired.WithLabelValues("error").Inc()
			s.logger.Warn("Failed to deliver reminder",
				zap.String("user_id", d.userID),
				zap.String("reminder_id", d.reminder.ID),
				zap.Error(err))
			continue
		}
		remindersFired.WithLabelValues("success").Inc()
		delivered++
	}
	return delivered
}

// Start runs the check loop until Stop is called or ctx is done. Calling
// Start on a running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.Tick(ctx, s.now())
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx, s.now())
			}
		}
	}()

	s.logger.Info("Reminder scheduler started",
		zap.Duration("interval", s.interval),
		zap.String("location", s.loc.String()))
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("Reminder scheduler stopped")
}
