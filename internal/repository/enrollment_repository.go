package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/consulting-sessions-api/internal/models"
)

const enrollmentColumns = `id, session_id, user_id, status, enrolled_at, cancelled_at`

// EnrollmentRepository reads the enrollment ledger.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// CountActive returns the number of seats held in a session.
func (r *EnrollmentRepository) CountActive(ctx context.Context, sessionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE session_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, sessionID, models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

// HasActive reports whether the user holds a seat in the session.
func (r *EnrollmentRepository) HasActive(ctx context.Context, sessionID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE session_id = $1 AND user_id = $2 AND status = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, sessionID, userID, models.EnrollmentStatusActive); err != nil {
		return false, fmt.Errorf("check active enrollment: %w", err)
	}
	return exists, nil
}

// ActiveSessionIDs returns which of the given sessions the user holds a seat in.
func (r *EnrollmentRepository) ActiveSessionIDs(ctx context.Context, userID string, sessionIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(sessionIDs))
	if userID == "" || len(sessionIDs) == 0 {
		return result, nil
	}
	const query = `SELECT session_id FROM enrollments WHERE user_id = $1 AND status = $2 AND session_id = ANY($3)`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID, models.EnrollmentStatusActive, pq.Array(sessionIDs)); err != nil {
		return nil, fmt.Errorf("list active session ids: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// ListBySession returns every ledger row of a session, cancelled ones included.
func (r *EnrollmentRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE session_id = $1 ORDER BY enrolled_at ASC, id ASC`
	enrollments := []models.Enrollment{}
	if err := r.db.SelectContext(ctx, &enrollments, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session enrollments: %w", err)
	}
	return enrollments, nil
}
