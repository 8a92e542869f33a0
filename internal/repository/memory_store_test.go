package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/consulting-sessions-api/internal/models"
)

func seedMemorySession(t *testing.T, store *MemoryStore, id string, scheduledAt time.Time, capacity int) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &models.Session{
		ID:              id,
		Title:           "Session " + id,
		Instructor:      "Ana",
		ScheduledAt:     scheduledAt,
		DurationMinutes: 60,
		MaxParticipants: capacity,
		Status:          models.SessionStatusAvailable,
		MeetingLink:     "https://meet.example/" + id,
	}))
}

func memoryRequest(sessionID, userID string) models.BookingRequest {
	return models.BookingRequest{SessionID: sessionID, UserID: userID, Now: repoNow}
}

func TestMemoryStoreLastSeatRace(t *testing.T) {
	store := NewMemoryStore()
	seedMemorySession(t, store, "session-1", repoNow.Add(time.Hour), 1)

	const callers = 32
	var (
		wg      sync.WaitGroup
		success int32
		full    int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Enroll(context.Background(), memoryRequest("session-1", fmt.Sprintf("user-%d", i)))
			switch {
			case err == nil:
				atomic.AddInt32(&success, 1)
			case errors.Is(err, ErrSessionFull):
				atomic.AddInt32(&full, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, success)
	assert.EqualValues(t, callers-1, full)

	session, err := store.FindByID(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, 1, session.CurrentParticipants)
	assert.Equal(t, models.SessionStatusFull, session.Status)

	count, err := store.CountActive(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, session.CurrentParticipants, count)
}

func TestMemoryStoreCounterMatchesLedgerUnderChurn(t *testing.T) {
	store := NewMemoryStore()
	seedMemorySession(t, store, "session-1", repoNow.Add(time.Hour), 5)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i%8)
			for j := 0; j < 25; j++ {
				if (i+j)%2 == 0 {
					_, _ = store.Enroll(context.Background(), memoryRequest("session-1", user))
				} else {
					_, _ = store.CancelEnrollment(context.Background(), memoryRequest("session-1", user))
				}
			}
		}(i)
	}
	wg.Wait()

	session, err := store.FindByID(context.Background(), "session-1")
	require.NoError(t, err)
	count, err := store.CountActive(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, count, session.CurrentParticipants)
	assert.LessOrEqual(t, session.CurrentParticipants, session.MaxParticipants)
	assert.Equal(t, session.CurrentParticipants == session.MaxParticipants, session.Status == models.SessionStatusFull)

	rows, err := store.ListBySession(context.Background(), "session-1")
	require.NoError(t, err)
	active := map[string]int{}
	for _, row := range rows {
		if row.IsActive() {
			active[row.UserID]++
		}
	}
	for user, n := range active {
		assert.Equal(t, 1, n, "user %s holds more than one active row", user)
	}
}

func TestMemoryStoreSessionsDoNotContend(t *testing.T) {
	store := NewMemoryStore()
	seedMemorySession(t, store, "session-a", repoNow.Add(time.Hour), 1)
	seedMemorySession(t, store, "session-b", repoNow.Add(time.Hour), 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"session-a", "session-b"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = store.Enroll(context.Background(), memoryRequest(id, "user-"+id))
		}(i, id)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestMemoryStoreEnrollIdempotent(t *testing.T) {
	store := NewMemoryStore()
	seedMemorySession(t, store, "session-1", repoNow.Add(time.Hour), 3)

	first, err := store.Enroll(context.Background(), memoryRequest("session-1", "user-1"))
	require.NoError(t, err)
	assert.True(t, first.Changed)

	second, err := store.Enroll(context.Background(), memoryRequest("session-1", "user-1"))
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, first.Enrollment.ID, second.Enrollment.ID)
	assert.Equal(t, 1, second.Session.CurrentParticipants)
}

func TestMemoryStoreReEnrollAfterCancelAddsRow(t *testing.T) {
	store := NewMemoryStore()
	seedMemorySession(t, store, "session-1", repoNow.Add(time.Hour), 1)

	_, err := store.Enroll(context.Background(), memoryRequest("session-1", "user-1"))
	require.NoError(t, err)
	cancelled, err := store.CancelEnrollment(context.Background(), memoryRequest("session-1", "user-1"))
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusAvailable, cancelled.Session.Status)

	_, err = store.Enroll(context.Background(), memoryRequest("session-1", "user-1"))
	require.NoError(t, err)

	rows, err := store.ListBySession(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.EnrollmentStatusCancelled, rows[0].Status)
	assert.Equal(t, models.EnrollmentStatusActive, rows[1].Status)
}

func TestMemoryStoreCancelRules(t *testing.T) {
	store := NewMemoryStore()
	seedMemorySession(t, store, "finished", repoNow.Add(-2*time.Hour), 3)
	seedMemorySession(t, store, "open", repoNow.Add(time.Hour), 3)

	_, err := store.CancelEnrollment(context.Background(), memoryRequest("finished", "user-1"))
	assert.ErrorIs(t, err, ErrSessionFinished)

	_, err = store.CancelEnrollment(context.Background(), memoryRequest("open", "user-1"))
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = store.CancelEnrollment(context.Background(), memoryRequest("missing", "user-1"))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.CancelSession(context.Background(), "open", repoNow)
	require.NoError(t, err)
	_, err = store.CancelEnrollment(context.Background(), memoryRequest("open", "user-1"))
	assert.ErrorIs(t, err, ErrSessionCancelled)
}

func TestMemoryStoreListPartitions(t *testing.T) {
	store := NewMemoryStore()
	seedMemorySession(t, store, "b-later", repoNow.Add(2*time.Hour), 3)
	seedMemorySession(t, store, "a-later", repoNow.Add(2*time.Hour), 3)
	seedMemorySession(t, store, "soon", repoNow.Add(time.Hour), 3)
	seedMemorySession(t, store, "done", repoNow.Add(-3*time.Hour), 3)
	seedMemorySession(t, store, "cancelled", repoNow.Add(3*time.Hour), 3)
	_, err := store.CancelSession(context.Background(), "cancelled", repoNow)
	require.NoError(t, err)

	upcoming, err := store.List(context.Background(), models.SessionRangeUpcoming, repoNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"soon", "a-later", "b-later"}, sessionIDs(upcoming))

	past, err := store.List(context.Background(), models.SessionRangePast, repoNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"done", "cancelled"}, sessionIDs(past))

	next, err := store.NextEndAfter(context.Background(), repoNow)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, repoNow.Add(2*time.Hour), *next)
}

func TestMemoryStoreDeleteAndSweep(t *testing.T) {
	store := NewMemoryStore()
	seedMemorySession(t, store, "booked", repoNow.Add(time.Hour), 3)
	seedMemorySession(t, store, "empty", repoNow.Add(time.Hour), 3)
	seedMemorySession(t, store, "done", repoNow.Add(-3*time.Hour), 3)

	_, err := store.Enroll(context.Background(), memoryRequest("booked", "user-1"))
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(context.Background(), "booked"), ErrSessionHasEnrollments)
	require.NoError(t, store.Delete(context.Background(), "empty"))
	_, err = store.FindByID(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	completed, err := store.CompleteFinished(context.Background(), repoNow)
	require.NoError(t, err)
	assert.EqualValues(t, 1, completed)
	done, err := store.FindByID(context.Background(), "done")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, done.Status)
}

func sessionIDs(sessions []models.Session) []string {
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}
