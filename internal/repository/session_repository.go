package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/consulting-sessions-api/internal/models"
)

// SessionRepository handles persistence of consulting sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindByID returns a session or ErrSessionNotFound.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// List returns one listing partition ordered by start time.
func (r *SessionRepository) List(ctx context.Context, rng models.SessionRange, now time.Time) ([]models.Session, error) {
	var where string
	switch rng {
	case models.SessionRangeUpcoming:
		where = `status NOT IN ($2, $3) AND NOT ` + sessionFinishedAt
	case models.SessionRangePast:
		where = `status IN ($2, $3) OR ` + sessionFinishedAt
	default:
		return nil, fmt.Errorf("unsupported session range %q", rng)
	}
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE ` + where + ` ORDER BY scheduled_at ASC, id ASC`

	sessions := []models.Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, now.UTC(), models.SessionStatusCompleted, models.SessionStatusCancelled); err != nil {
		return nil, fmt.Errorf("list %s sessions: %w", rng, err)
	}
	return sessions, nil
}

// NextEndAfter returns the earliest end among sessions not yet finished, or nil.
func (r *SessionRepository) NextEndAfter(ctx context.Context, now time.Time) (*time.Time, error) {
	query := `SELECT MIN` + sessionEndsAt + ` FROM sessions WHERE status NOT IN ($2, $3) AND NOT ` + sessionFinishedAt
	var next sql.NullTime
	if err := r.db.GetContext(ctx, &next, query, now.UTC(), models.SessionStatusCompleted, models.SessionStatusCancelled); err != nil {
		return nil, fmt.Errorf("next session end: %w", err)
	}
	if !next.Valid {
		return nil, nil
	}
	return &next.Time, nil
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = session.CreatedAt
	if session.Status == "" {
		session.Status = models.SessionStatusScheduled
	}
	const query = `INSERT INTO sessions (id, title, description, instructor, scheduled_at, duration_minutes, max_participants,
        current_participants, status, platform, meeting_link, created_at, updated_at)
        VALUES (:id, :title, :description, :instructor, :scheduled_at, :duration_minutes, :max_participants,
        :current_participants, :status, :platform, :meeting_link, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update applies an administrative patch under the session row lock, so a
// capacity change never races an in-flight enrollment.
func (r *SessionRepository) Update(ctx context.Context, id string, patch models.SessionPatch, now time.Time) (*models.Session, error) {
	var updated models.Session
	err := withSessionLock(ctx, r.db, id, func(tx *sqlx.Tx, session *models.Session) error {
		if err := applyPatch(session, patch, now.UTC()); err != nil {
			return err
		}
		const query = `UPDATE sessions SET title = :title, description = :description, instructor = :instructor,
            scheduled_at = :scheduled_at, duration_minutes = :duration_minutes, max_participants = :max_participants,
            status = :status, platform = :platform, meeting_link = :meeting_link, updated_at = :updated_at
            WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, query, session); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		updated = *session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CancelSession marks a session cancelled and returns the users holding seats.
// Enrollment rows are left untouched so the roster stays auditable.
func (r *SessionRepository) CancelSession(ctx context.Context, id string, now time.Time) (*models.SessionCancellation, error) {
	var result models.SessionCancellation
	err := withSessionLock(ctx, r.db, id, func(tx *sqlx.Tx, session *models.Session) error {
		if session.Status == models.SessionStatusCancelled {
			result.Session = *session
			return nil
		}
		if session.Status == models.SessionStatusCompleted || session.Window(now).Finished {
			return ErrSessionClosed
		}

		const attendeesQuery = `SELECT user_id FROM enrollments WHERE session_id = $1 AND status = $2 ORDER BY enrolled_at ASC`
		attendees := []string{}
		if err := tx.SelectContext(ctx, &attendees, attendeesQuery, id, models.EnrollmentStatusActive); err != nil {
			return fmt.Errorf("list session attendees: %w", err)
		}

		session.Status = models.SessionStatusCancelled
		session.UpdatedAt = now.UTC()
		if err := saveCounters(ctx, tx, session); err != nil {
			return err
		}
		result = models.SessionCancellation{Session: *session, Attendees: attendees, Changed: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a session that never had an enrollment.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return withSessionLock(ctx, r.db, id, func(tx *sqlx.Tx, session *models.Session) error {
		var rows int
		if err := tx.GetContext(ctx, &rows, `SELECT COUNT(*) FROM enrollments WHERE session_id = $1`, id); err != nil {
			return fmt.Errorf("count session enrollments: %w", err)
		}
		if rows > 0 {
			return ErrSessionHasEnrollments
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// CompleteFinished persists the completed status for finished sessions.
func (r *SessionRepository) CompleteFinished(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE sessions SET status = $2, updated_at = $1
        WHERE status IN ($3, $4, $5) AND ` + sessionFinishedAt
	res, err := r.db.ExecContext(ctx, query, now.UTC(), models.SessionStatusCompleted,
		models.SessionStatusScheduled, models.SessionStatusAvailable, models.SessionStatusFull)
	if err != nil {
		return 0, fmt.Errorf("complete finished sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("complete finished sessions: %w", err)
	}
	return affected, nil
}
