package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/consulting-sessions-api/internal/models"
)

func TestEnrollmentRepositoryCountActive(t *testing.T) {
	db, mock, cleanup := newSessionDBMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM enrollments WHERE session_id = $1 AND status = $2`)).
		WithArgs("session-1", models.EnrollmentStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := NewEnrollmentRepository(db).CountActive(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestEnrollmentRepositoryActiveSessionIDs(t *testing.T) {
	db, mock, cleanup := newSessionDBMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`session_id = ANY($3)`)).
		WithArgs("user-1", models.EnrollmentStatusActive, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}).AddRow("session-2"))

	ids, err := NewEnrollmentRepository(db).ActiveSessionIDs(context.Background(), "user-1", []string{"session-1", "session-2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"session-2": true}, ids)
}

func TestEnrollmentRepositoryActiveSessionIDsSkipsEmptyInput(t *testing.T) {
	db, _, cleanup := newSessionDBMock(t)
	defer cleanup()

	ids, err := NewEnrollmentRepository(db).ActiveSessionIDs(context.Background(), "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEnrollmentRepositoryListBySessionKeepsCancelledRows(t *testing.T) {
	db, mock, cleanup := newSessionDBMock(t)
	defer cleanup()

	cancelledAt := repoNow.Add(-30 * time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM enrollments WHERE session_id = $1 ORDER BY enrolled_at ASC`)).
		WithArgs("session-1").
		WillReturnRows(sqlmock.NewRows(enrollmentRowColumns).
			AddRow("e-1", "session-1", "user-1", "ACTIVE", repoNow.Add(-2 * time.Hour), nil).
			AddRow("e-2", "session-1", "user-2", "CANCELLED", repoNow.Add(-time.Hour), cancelledAt))

	rows, err := NewEnrollmentRepository(db).ListBySession(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsActive())
	assert.False(t, rows[1].IsActive())
	require.NotNil(t, rows[1].CancelledAt)
}
