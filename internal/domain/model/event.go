package model

import (
	"github.com/google/uuid"
	"time"
)

// AlertEvent is published after every SOS so the worker can mirror it to operator channels.
type AlertEvent struct {
	AlertID     uuid.UUID
	UserID      string
	DisplayName string
	Message     string
	Location    *Location
	Status      AlertStatus
	Sent        int
	Failed      int
	Attempts    int      // Mirror delivery attempts made so far.
	Delivered   []string // Operator channels that already received the mirror.
	OccurredAt  time.Time
}

// NewAlertEvent builds the event for a completed alert.
func NewAlertEvent(a *Alert, displayName string) *AlertEvent {
	sent, failed := a.Counts()
	return &AlertEvent{
		AlertID:     a.ID,
		UserID:      a.UserID,
		DisplayName: displayName,
		Message:     a.Message,
		Location:    a.Location,
		Status:      a.Status,
		Sent:        sent,
		Failed:      failed,
		OccurredAt:  a.UpdatedAt,
	}
}

// IsDelivered reports whether the named channel already received the mirror.
func (e *AlertEvent) IsDelivered(channel string) bool {
	for _, c := range e.Delivered {
		if c == channel {
			return true
		}
	}
	return false
}

// Who returns the best human-readable name for the user behind the event.
func (e *AlertEvent) Who() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.UserID
}
