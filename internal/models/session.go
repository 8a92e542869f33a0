package models

import "time"

// SessionStatus is the stored capacity/administrative state of a session.
type SessionStatus string

// Possible session statuses. Completed and cancelled are terminal.
const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusAvailable SessionStatus = "available"
	SessionStatusFull      SessionStatus = "full"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// IsTerminal reports whether no further booking transition is possible.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// Valid reports whether s is a known status.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusScheduled, SessionStatusAvailable, SessionStatusFull, SessionStatusCompleted, SessionStatusCancelled:
		return true
	}
	return false
}

// Session is a scheduled group consulting session with a hard seat cap.
type Session struct {
	ID                  string        `db:"id" json:"id"`
	Title               string        `db:"title" json:"title"`
	Description         string        `db:"description" json:"description"`
	Instructor          string        `db:"instructor" json:"instructor"`
	ScheduledAt         time.Time     `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes     int           `db:"duration_minutes" json:"duration_minutes"`
	MaxParticipants     int           `db:"max_participants" json:"max_participants"`
	CurrentParticipants int           `db:"current_participants" json:"current_participants"`
	Status              SessionStatus `db:"status" json:"status"`
	Platform            string        `db:"platform" json:"platform"`
	MeetingLink         string        `db:"meeting_link" json:"meeting_link"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updated_at"`
}

// Window classifies the session against now.
func (s *Session) Window(now time.Time) Window {
	return ClassifyWindow(s.ScheduledAt, s.DurationMinutes, now)
}

// EffectiveStatus layers the time-derived completion on top of the stored
// status, so a finished session is never reported as bookable.
func (s *Session) EffectiveStatus(now time.Time) SessionStatus {
	if s.Status.IsTerminal() {
		return s.Status
	}
	if s.Window(now).Finished {
		return SessionStatusCompleted
	}
	return s.Status
}

// InRange reports whether the session belongs to the given listing partition.
func (s *Session) InRange(r SessionRange, now time.Time) bool {
	past := s.Status.IsTerminal() || s.Window(now).Finished
	switch r {
	case SessionRangeUpcoming:
		return !past
	case SessionRangePast:
		return past
	}
	return false
}

// SessionRange selects a listing partition.
type SessionRange string

// Listing partitions. Live is derived from the other two.
const (
	SessionRangeUpcoming SessionRange = "upcoming"
	SessionRangePast     SessionRange = "past"
	SessionRangeLive     SessionRange = "live"
)

// Valid reports whether r is a known range.
func (r SessionRange) Valid() bool {
	return r == SessionRangeUpcoming || r == SessionRangePast || r == SessionRangeLive
}

// SessionPatch carries administrative changes; nil fields are left untouched.
type SessionPatch struct {
	Title           *string
	Description     *string
	Instructor      *string
	ScheduledAt     *time.Time
	DurationMinutes *int
	MaxParticipants *int
	Status          *SessionStatus
	Platform        *string
	MeetingLink     *string
}

// Apply copies the set fields onto s. Capacity and status reconciliation is
// the caller's job.
func (p SessionPatch) Apply(s *Session) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Instructor != nil {
		s.Instructor = *p.Instructor
	}
	if p.ScheduledAt != nil {
		s.ScheduledAt = *p.ScheduledAt
	}
	if p.DurationMinutes != nil {
		s.DurationMinutes = *p.DurationMinutes
	}
	if p.MaxParticipants != nil {
		s.MaxParticipants = *p.MaxParticipants
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Platform != nil {
		s.Platform = *p.Platform
	}
	if p.MeetingLink != nil {
		s.MeetingLink = *p.MeetingLink
	}
}
