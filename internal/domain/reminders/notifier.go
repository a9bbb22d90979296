package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/events"
)

// Notification is the payload pushed to a user's reminder channel.
type Notification struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Tag     string    `json:"tag"`
	FiredAt time.Time `json:"firedAt"`
}

// Channel is the pub/sub channel carrying a user's reminders.
func Channel(userID string) string {
	return "reminders:" + userID
}

// Publisher is the subset of the Redis client the notifier needs.
type Publisher interface {
	PublishEvent(ctx context.Context, channel string, payload interface{}) error
	events.Publisher
}

// RedisNotifier publishes reminders to the per-user channel and records a
// reminder_fired domain event.
type RedisNotifier struct {
	pub Publisher
}

func NewRedisNotifier(pub Publisher) *RedisNotifier {
	return &RedisNotifier{pub: pub}
}

func (n *RedisNotifier) Notify(ctx context.Context, userID string, r Reminder, firedAt time.Time) error {
	payload := Notification{
		ID:      r.ID,
		Title:   r.Title,
		Body:    r.Body,
		Tag:     r.ID,
		FiredAt: firedAt.UTC(),
	}
	if err := n.pub.PublishEvent(ctx, Channel(userID), payload); err != nil {
		return fmt.Errorf("publish reminder %s: %w", r.ID, err)
	}
	event := events.New(events.EventTypeReminderFired, userID, r.ID, map[string]interface{}{
		"title": r.Title,
		"time":  r.Time,
	})
	if err := n.pub.PublishDomainEvent(ctx, event); err != nil {
		return fmt.Errorf("publish reminder event %s: %w", r.ID, err)
	}
	return nil
}
