package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/consulting-sessions-api/internal/models"
)

const sessionColumns = `id, title, description, instructor, scheduled_at, duration_minutes, max_participants,
current_participants, status, platform, meeting_link, created_at, updated_at`

// sessionEndsAt is the SQL form of models.Window.End.
const sessionEndsAt = `(scheduled_at + duration_minutes * INTERVAL '1 minute')`

// sessionFinishedAt mirrors models.ClassifyWindow for the instant bound to $1:
// zero-length sessions finish at their start, the rest strictly after the end.
const sessionFinishedAt = `(CASE WHEN duration_minutes > 0 THEN ` + sessionEndsAt + ` < $1 ELSE scheduled_at <= $1 END)`

// withSessionLock runs fn inside a transaction holding the row lock of one
// session. Calls on other sessions never wait on this lock.
func withSessionLock(ctx context.Context, db *sqlx.DB, sessionID string, fn func(tx *sqlx.Tx, session *models.Session) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var session models.Session
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &session, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("lock session: %w", err)
	}

	if err = fn(tx, &session); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit session transaction: %w", err)
	}
	return nil
}

// saveCounters persists the only fields the booking engine mutates.
func saveCounters(ctx context.Context, tx *sqlx.Tx, session *models.Session) error {
	const query = `UPDATE sessions SET current_participants = $2, status = $3, updated_at = $4 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, session.ID, session.CurrentParticipants, session.Status, session.UpdatedAt); err != nil {
		return fmt.Errorf("update session counters: %w", err)
	}
	return nil
}
