package models

import "time"

// BookingRequest identifies one enroll or cancel call.
type BookingRequest struct {
	SessionID string
	UserID    string
	Now       time.Time
}

// BookingResult is the committed outcome of an enroll or cancel call.
type BookingResult struct {
	Session    Session
	Enrollment *Enrollment
	// Changed is false when an enroll was satisfied by an existing seat.
	Changed        bool
	PreviousStatus SessionStatus
}

// SessionCancellation is the committed outcome of an administrative cancel.
type SessionCancellation struct {
	Session Session
	// Attendees are the users holding a seat when the session was cancelled.
	Attendees []string
	Changed   bool
}
