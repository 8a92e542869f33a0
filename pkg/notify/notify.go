// Package notify delivers session notifications to downstream channels
// (push, e-mail, in-app inbox). Delivery is best effort.
package notify

import (
	"context"
	"encoding/json"
	"time"
)

// Event types published by the booking engine.
const (
	EventEnrolled            = "session.enrolled"
	EventEnrollmentCancelled = "session.enrollment_cancelled"
	EventSessionCancelled    = "session.cancelled"
)

// Event is a single notification addressed to one user.
type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	UserID     string            `json:"user_id"`
	SessionID  string            `json:"session_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]string `json:"data,omitempty"`
}

// Encode renders the event as JSON.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher hands events to a transport.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
