package events

import (
	"context"
	"time"
)

// Domain event types
const (
	EventTypeHabitUpdate       = "habit_update"
	EventTypeLogUpdate         = "log_update"
	EventTypeMilestoneAchieved = "milestone_achieved"
	EventTypeCheckInCompleted  = "checkin_completed"
	EventTypeReminderFired     = "reminder_fired"
	EventTypeUserDataCleared   = "user_data_cleared"
)

// Event is published on the shared event channel whenever user-visible state
// changes. UserID is the opaque identity resolved at the HTTP boundary.
type Event struct {
	EventType string      `json:"event_type"`
	UserID    string      `json:"user_id"`
	EntityID  string      `json:"entity_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Details   interface{} `json:"details,omitempty"`
}

// New stamps an event with the current UTC time.
func New(eventType, userID, entityID string, details interface{}) *Event {
	return &Event{
		EventType: eventType,
		UserID:    userID,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		Details:   details,
	}
}

// Publisher delivers domain events. The Redis client implements it.
type Publisher interface {
	PublishDomainEvent(ctx context.Context, event *Event) error
}
