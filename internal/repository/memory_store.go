package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/consulting-sessions-api/internal/models"
)

// MemoryStore keeps sessions and their ledger in process. Each session has
// its own mutex, so bookings on different sessions never wait on each other.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	mu      sync.Mutex
	session models.Session
	ledger  []models.Enrollment
	// active maps user id to the index of the user's ACTIVE row in ledger.
	active  map[string]int
	deleted bool
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

// withEntry runs fn holding the lock of one session.
func (m *MemoryStore) withEntry(id string, fn func(e *memoryEntry) error) error {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return ErrSessionNotFound
	}
	return fn(entry)
}

func (m *MemoryStore) snapshot() []*memoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]*memoryEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, entry)
	}
	return entries
}

// FindByID returns a copy of the session.
func (m *MemoryStore) FindByID(_ context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := m.withEntry(id, func(e *memoryEntry) error {
		session = e.session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns one listing partition ordered by start time then id.
func (m *MemoryStore) List(_ context.Context, rng models.SessionRange, now time.Time) ([]models.Session, error) {
	if rng != models.SessionRangeUpcoming && rng != models.SessionRangePast {
		return nil, fmt.Errorf("unsupported session range %q", rng)
	}
	sessions := []models.Session{}
	for _, entry := range m.snapshot() {
		entry.mu.Lock()
		if !entry.deleted && entry.session.InRange(rng, now) {
			sessions = append(sessions, entry.session)
		}
		entry.mu.Unlock()
	}
	sortSessions(sessions)
	return sessions, nil
}

// NextEndAfter returns the earliest end among sessions not yet finished.
func (m *MemoryStore) NextEndAfter(_ context.Context, now time.Time) (*time.Time, error) {
	var next *time.Time
	for _, entry := range m.snapshot() {
		entry.mu.Lock()
		if !entry.deleted && entry.session.InRange(models.SessionRangeUpcoming, now) {
			end := entry.session.Window(now).End
			if next == nil || end.Before(*next) {
				next = &end
			}
		}
		entry.mu.Unlock()
	}
	return next, nil
}

// Create stores a new session.
func (m *MemoryStore) Create(_ context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	session.UpdatedAt = session.CreatedAt
	if session.Status == "" {
		session.Status = models.SessionStatusScheduled
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[session.ID]; exists {
		return fmt.Errorf("create session: id %s already exists", session.ID)
	}
	m.entries[session.ID] = &memoryEntry{session: *session, active: make(map[string]int)}
	return nil
}

// Update applies an administrative patch under the session lock.
func (m *MemoryStore) Update(_ context.Context, id string, patch models.SessionPatch, now time.Time) (*models.Session, error) {
	var updated models.Session
	err := m.withEntry(id, func(e *memoryEntry) error {
		next := e.session
		if err := applyPatch(&next, patch, now.UTC()); err != nil {
			return err
		}
		e.session = next
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CancelSession marks a session cancelled and returns its seat holders.
func (m *MemoryStore) CancelSession(_ context.Context, id string, now time.Time) (*models.SessionCancellation, error) {
	var result models.SessionCancellation
	err := m.withEntry(id, func(e *memoryEntry) error {
		if e.session.Status == models.SessionStatusCancelled {
			result.Session = e.session
			return nil
		}
		if e.session.Status == models.SessionStatusCompleted || e.session.Window(now).Finished {
			return ErrSessionClosed
		}
		attendees := []string{}
		for _, row := range e.ledger {
			if row.IsActive() {
				attendees = append(attendees, row.UserID)
			}
		}
		e.session.Status = models.SessionStatusCancelled
		e.session.UpdatedAt = now.UTC()
		result = models.SessionCancellation{Session: e.session, Attendees: attendees, Changed: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a session that never had an enrollment.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if len(entry.ledger) > 0 {
		return ErrSessionHasEnrollments
	}
	entry.deleted = true
	delete(m.entries, id)
	return nil
}

// CompleteFinished stores the completed status for finished sessions.
func (m *MemoryStore) CompleteFinished(_ context.Context, now time.Time) (int64, error) {
	var completed int64
	for _, entry := range m.snapshot() {
		entry.mu.Lock()
		s := &entry.session
		if !entry.deleted && !s.Status.IsTerminal() && s.Window(now).Finished {
			s.Status = models.SessionStatusCompleted
			s.UpdatedAt = now.UTC()
			completed++
		}
		entry.mu.Unlock()
	}
	return completed, nil
}

// CountActive returns the number of seats held in a session.
func (m *MemoryStore) CountActive(_ context.Context, sessionID string) (int, error) {
	var count int
	err := m.withEntry(sessionID, func(e *memoryEntry) error {
		count = len(e.active)
		return nil
	})
	if errors.Is(err, ErrSessionNotFound) {
		return 0, nil
	}
	return count, err
}

// HasActive reports whether the user holds a seat in the session.
func (m *MemoryStore) HasActive(_ context.Context, sessionID, userID string) (bool, error) {
	var found bool
	err := m.withEntry(sessionID, func(e *memoryEntry) error {
		_, found = e.active[userID]
		return nil
	})
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	return found, err
}

// ActiveSessionIDs returns which of the given sessions the user holds a seat in.
func (m *MemoryStore) ActiveSessionIDs(ctx context.Context, userID string, sessionIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(sessionIDs))
	if userID == "" {
		return result, nil
	}
	for _, id := range sessionIDs {
		found, err := m.HasActive(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		if found {
			result[id] = true
		}
	}
	return result, nil
}

// ListBySession returns every ledger row of a session in insertion order.
func (m *MemoryStore) ListBySession(_ context.Context, sessionID string) ([]models.Enrollment, error) {
	rows := []models.Enrollment{}
	err := m.withEntry(sessionID, func(e *memoryEntry) error {
		for _, row := range e.ledger {
			rows = append(rows, copyEnrollment(row))
		}
		return nil
	})
	if errors.Is(err, ErrSessionNotFound) {
		return rows, nil
	}
	return rows, err
}

// Enroll claims a seat for the user or returns the seat they already hold.
func (m *MemoryStore) Enroll(_ context.Context, req models.BookingRequest) (*models.BookingResult, error) {
	now := req.Now.UTC()
	var result models.BookingResult
	err := m.withEntry(req.SessionID, func(e *memoryEntry) error {
		idx, enrolled := e.active[req.UserID]
		admit, err := admitEnrollment(&e.session, enrolled, now)
		if err != nil {
			return err
		}
		result.PreviousStatus = e.session.Status
		if !admit {
			existing := copyEnrollment(e.ledger[idx])
			result.Session = e.session
			result.Enrollment = &existing
			return nil
		}

		row := models.Enrollment{
			ID:         uuid.NewString(),
			SessionID:  e.session.ID,
			UserID:     req.UserID,
			Status:     models.EnrollmentStatusActive,
			EnrolledAt: now,
		}
		e.ledger = append(e.ledger, row)
		e.active[req.UserID] = len(e.ledger) - 1
		takeSeat(&e.session, now)

		result.Session = e.session
		result.Enrollment = &row
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelEnrollment releases the seat held by the user.
func (m *MemoryStore) CancelEnrollment(_ context.Context, req models.BookingRequest) (*models.BookingResult, error) {
	now := req.Now.UTC()
	var result models.BookingResult
	err := m.withEntry(req.SessionID, func(e *memoryEntry) error {
		if err := checkRelease(&e.session, now); err != nil {
			return err
		}
		idx, enrolled := e.active[req.UserID]
		if !enrolled {
			return ErrNotEnrolled
		}

		cancelledAt := now
		e.ledger[idx].Status = models.EnrollmentStatusCancelled
		e.ledger[idx].CancelledAt = &cancelledAt
		delete(e.active, req.UserID)

		result.PreviousStatus = e.session.Status
		releaseSeat(&e.session, now)

		row := copyEnrollment(e.ledger[idx])
		result.Session = e.session
		result.Enrollment = &row
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func copyEnrollment(row models.Enrollment) models.Enrollment {
	if row.CancelledAt != nil {
		at := *row.CancelledAt
		row.CancelledAt = &at
	}
	return row
}

func sortSessions(sessions []models.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].ScheduledAt.Equal(sessions[j].ScheduledAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].ScheduledAt.Before(sessions[j].ScheduledAt)
	})
}
