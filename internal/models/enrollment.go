package models

import "time"

// EnrollmentStatus represents the lifecycle of a ledger row.
type EnrollmentStatus string

// Possible enrollment statuses. Cancelled rows are kept for the audit trail.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment is a user's claimed seat in a session.
type Enrollment struct {
	ID          string           `db:"id" json:"id"`
	SessionID   string           `db:"session_id" json:"session_id"`
	UserID      string           `db:"user_id" json:"user_id"`
	Status      EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt  time.Time        `db:"enrolled_at" json:"enrolled_at"`
	CancelledAt *time.Time       `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// IsActive reports whether the row still holds a seat.
func (e Enrollment) IsActive() bool {
	return e.Status == EnrollmentStatusActive
}
