package dto

import "time"

// Display formats of SessionView.Date and SessionView.Time.
const (
	SessionDateLayout = "2006-01-02"
	SessionTimeLayout = "15:04"
)

// SessionView is a session as seen by one caller.
type SessionView struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	Duration        int       `json:"duration"`
	Participants    int       `json:"participants"`
	MaxParticipants int       `json:"maxParticipants"`
	Status          string    `json:"status"`
	Instructor      string    `json:"instructor"`
	Platform        string    `json:"platform"`
	MeetingLink     *string   `json:"meetingLink,omitempty"`
	IsEnrolled      bool      `json:"isEnrolled"`
	IsLive          bool      `json:"isLive"`
	IsJoinable      bool      `json:"isJoinable"`
	IsFinished      bool      `json:"isFinished"`
}

// BookingResponse is returned by enroll and cancel.
type BookingResponse struct {
	SessionID       string     `json:"sessionId"`
	EnrollmentID    string     `json:"enrollmentId,omitempty"`
	Status          string     `json:"status"`
	Participants    int        `json:"participants"`
	MaxParticipants int        `json:"maxParticipants"`
	AlreadyEnrolled bool       `json:"alreadyEnrolled"`
	EnrolledAt      *time.Time `json:"enrolledAt,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
}

// CreateSessionRequest defines the payload to schedule a session.
type CreateSessionRequest struct {
	Title           string    `json:"title" validate:"required,max=200"`
	Description     string    `json:"description" validate:"max=4000"`
	Instructor      string    `json:"instructor" validate:"required,max=200"`
	ScheduledAt     time.Time `json:"scheduledAt" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"gte=0,lte=1440"`
	MaxParticipants int       `json:"maxParticipants" validate:"required,gte=1"`
	Status          string    `json:"status" validate:"omitempty,oneof=scheduled available"`
	Platform        string    `json:"platform" validate:"max=100"`
	MeetingLink     string    `json:"meetingLink" validate:"omitempty,url"`
}

// UpdateSessionRequest is a partial update; omitted fields are unchanged.
type UpdateSessionRequest struct {
	Title           *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string    `json:"description" validate:"omitempty,max=4000"`
	Instructor      *string    `json:"instructor" validate:"omitempty,min=1,max=200"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
	DurationMinutes *int       `json:"durationMinutes" validate:"omitempty,gte=0,lte=1440"`
	MaxParticipants *int       `json:"maxParticipants" validate:"omitempty,gte=1"`
	Status          *string    `json:"status" validate:"omitempty,oneof=scheduled available"`
	Platform        *string    `json:"platform" validate:"omitempty,max=100"`
	MeetingLink     *string    `json:"meetingLink" validate:"omitempty,url"`
}

// AdminSessionResponse exposes every stored field to operators.
type AdminSessionResponse struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Instructor          string    `json:"instructor"`
	ScheduledAt         time.Time `json:"scheduledAt"`
	DurationMinutes     int       `json:"durationMinutes"`
	MaxParticipants     int       `json:"maxParticipants"`
	CurrentParticipants int       `json:"currentParticipants"`
	Status              string    `json:"status"`
	EffectiveStatus     string    `json:"effectiveStatus"`
	Platform            string    `json:"platform"`
	MeetingLink         string    `json:"meetingLink"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// RosterEntry is one ledger row of a session.
type RosterEntry struct {
	EnrollmentID string     `json:"enrollmentId"`
	UserID       string     `json:"userId"`
	Status       string     `json:"status"`
	EnrolledAt   time.Time  `json:"enrolledAt"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
}

// SessionRoster groups the ledger of one session.
type SessionRoster struct {
	Session AdminSessionResponse `json:"session"`
	Active  int                  `json:"active"`
	Entries []RosterEntry        `json:"entries"`
}
