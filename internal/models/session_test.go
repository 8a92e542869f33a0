package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	finished := Session{ScheduledAt: now.Add(-2 * time.Hour), DurationMinutes: 60, Status: SessionStatusFull}
	upcoming := Session{ScheduledAt: now.Add(time.Hour), DurationMinutes: 60, Status: SessionStatusAvailable}
	cancelled := Session{ScheduledAt: now.Add(-2 * time.Hour), DurationMinutes: 60, Status: SessionStatusCancelled}

	assert.Equal(t, SessionStatusCompleted, finished.EffectiveStatus(now))
	assert.Equal(t, SessionStatusAvailable, upcoming.EffectiveStatus(now))
	assert.Equal(t, SessionStatusCancelled, cancelled.EffectiveStatus(now))
}

func TestSessionInRange(t *testing.T) {
	now := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	endedMinuteAgo := Session{ScheduledAt: now.Add(-61 * time.Minute), DurationMinutes: 60, Status: SessionStatusAvailable}
	assert.True(t, endedMinuteAgo.InRange(SessionRangePast, now))
	assert.False(t, endedMinuteAgo.InRange(SessionRangeUpcoming, now))

	cancelledFuture := Session{ScheduledAt: now.Add(time.Hour), DurationMinutes: 60, Status: SessionStatusCancelled}
	assert.True(t, cancelledFuture.InRange(SessionRangePast, now))

	live := Session{ScheduledAt: now.Add(-10 * time.Minute), DurationMinutes: 60, Status: SessionStatusFull}
	assert.True(t, live.InRange(SessionRangeUpcoming, now))
	assert.False(t, live.InRange(SessionRangeLive, now))
}

func TestSessionPatchApply(t *testing.T) {
	title := "Mentoria avançada"
	capacity := 12
	s := Session{Title: "Mentoria", MaxParticipants: 10, Platform: "zoom"}
	SessionPatch{Title: &title, MaxParticipants: &capacity}.Apply(&s)

	assert.Equal(t, title, s.Title)
	assert.Equal(t, 12, s.MaxParticipants)
	assert.Equal(t, "zoom", s.Platform)
}
