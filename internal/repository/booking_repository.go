package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/consulting-sessions-api/internal/models"
)

// BookingRepository runs enroll and cancel as single transactions that hold
// the session row lock for their whole check-and-mutate sequence.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Enroll claims a seat for the user or returns the seat they already hold.
func (r *BookingRepository) Enroll(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error) {
	now := req.Now.UTC()
	var result models.BookingResult
	err := withSessionLock(ctx, r.db, req.SessionID, func(tx *sqlx.Tx, session *models.Session) error {
		existing, err := activeEnrollment(ctx, tx, session.ID, req.UserID)
		if err != nil {
			return err
		}
		admit, err := admitEnrollment(session, existing != nil, now)
		if err != nil {
			return err
		}
		result.PreviousStatus = session.Status
		if !admit {
			result.Session = *session
			result.Enrollment = existing
			return nil
		}

		enrollment := &models.Enrollment{
			ID:         uuid.NewString(),
			SessionID:  session.ID,
			UserID:     req.UserID,
			Status:     models.EnrollmentStatusActive,
			EnrolledAt: now,
		}
		const insert = `INSERT INTO enrollments (id, session_id, user_id, status, enrolled_at)
            VALUES (:id, :session_id, :user_id, :status, :enrolled_at)`
		if _, err := tx.NamedExecContext(ctx, insert, enrollment); err != nil {
			return fmt.Errorf("insert enrollment: %w", err)
		}

		takeSeat(session, now)
		if err := saveCounters(ctx, tx, session); err != nil {
			return err
		}
		result.Session = *session
		result.Enrollment = enrollment
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelEnrollment releases the seat held by the user.
func (r *BookingRepository) CancelEnrollment(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error) {
	now := req.Now.UTC()
	var result models.BookingResult
	err := withSessionLock(ctx, r.db, req.SessionID, func(tx *sqlx.Tx, session *models.Session) error {
		if err := checkRelease(session, now); err != nil {
			return err
		}
		existing, err := activeEnrollment(ctx, tx, session.ID, req.UserID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotEnrolled
		}

		const update = `UPDATE enrollments SET status = $2, cancelled_at = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, update, existing.ID, models.EnrollmentStatusCancelled, now); err != nil {
			return fmt.Errorf("cancel enrollment: %w", err)
		}
		existing.Status = models.EnrollmentStatusCancelled
		existing.CancelledAt = &now

		result.PreviousStatus = session.Status
		releaseSeat(session, now)
		if err := saveCounters(ctx, tx, session); err != nil {
			return err
		}
		result.Session = *session
		result.Enrollment = existing
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func activeEnrollment(ctx context.Context, tx *sqlx.Tx, sessionID, userID string) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE session_id = $1 AND user_id = $2 AND status = $3`
	var enrollment models.Enrollment
	if err := tx.GetContext(ctx, &enrollment, query, sessionID, userID, models.EnrollmentStatusActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active enrollment: %w", err)
	}
	return &enrollment, nil
}
