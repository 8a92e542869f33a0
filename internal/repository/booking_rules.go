package repository

import (
	"time"

	"github.com/noah-isme/consulting-sessions-api/internal/models"
)

// The functions below hold the check-and-mutate rules of the booking engine.
// Both stores call them while holding the per-session lock.

// admitEnrollment decides whether a new seat must be taken. It returns false
// with no error when the caller already holds a seat.
func admitEnrollment(s *models.Session, alreadyEnrolled bool, now time.Time) (bool, error) {
	if s.Status.IsTerminal() || s.Window(now).Finished {
		return false, ErrSessionClosed
	}
	if alreadyEnrolled {
		return false, nil
	}
	if s.CurrentParticipants >= s.MaxParticipants {
		return false, ErrSessionFull
	}
	return true, nil
}

func takeSeat(s *models.Session, now time.Time) {
	s.CurrentParticipants++
	s.Status = statusForCount(s.Status, s.CurrentParticipants, s.MaxParticipants)
	s.UpdatedAt = now
}

// checkRelease rejects cancellations once the roster is frozen.
func checkRelease(s *models.Session, now time.Time) error {
	if s.Status == models.SessionStatusCancelled {
		return ErrSessionCancelled
	}
	if s.Status == models.SessionStatusCompleted || s.Window(now).Finished {
		return ErrSessionFinished
	}
	return nil
}

func releaseSeat(s *models.Session, now time.Time) {
	if s.CurrentParticipants > 0 {
		s.CurrentParticipants--
	}
	s.Status = statusForCount(s.Status, s.CurrentParticipants, s.MaxParticipants)
	s.UpdatedAt = now
}

// statusForCount keeps full tied to the seat count for non-terminal sessions.
func statusForCount(status models.SessionStatus, current, capacity int) models.SessionStatus {
	switch {
	case status.IsTerminal():
		return status
	case current >= capacity:
		return models.SessionStatusFull
	case status == models.SessionStatusFull:
		return models.SessionStatusAvailable
	default:
		return status
	}
}

// applyPatch applies an administrative change under the session lock.
func applyPatch(s *models.Session, patch models.SessionPatch, now time.Time) error {
	if patch.MaxParticipants != nil && *patch.MaxParticipants < s.CurrentParticipants {
		return ErrCapacityBelowEnrollment
	}
	if patch.Status != nil && s.Status.IsTerminal() {
		return ErrSessionClosed
	}
	patch.Apply(s)
	s.Status = statusForCount(s.Status, s.CurrentParticipants, s.MaxParticipants)
	s.UpdatedAt = now
	return nil
}
