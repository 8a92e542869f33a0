package models

import (
	"strings"
	"time"
)

// JoinWindowLead is how long before the start an enrolled user may join.
const JoinWindowLead = 5 * time.Minute

// Window holds the time-derived facts about a session at one instant.
type Window struct {
	Start    time.Time
	End      time.Time
	JoinFrom time.Time
	Live     bool
	Finished bool
}

// ClassifyWindow derives the live and finished facts for [start, end) at now.
// A zero-length session is finished from its start instant onward.
func ClassifyWindow(scheduledAt time.Time, durationMinutes int, now time.Time) Window {
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	w := Window{
		Start:    scheduledAt,
		End:      scheduledAt.Add(time.Duration(durationMinutes) * time.Minute),
		JoinFrom: scheduledAt.Add(-JoinWindowLead),
	}
	if durationMinutes == 0 {
		w.Finished = !now.Before(w.End)
	} else {
		w.Finished = now.After(w.End)
	}
	w.Live = !w.Finished && !now.Before(w.JoinFrom) && !now.After(w.End)
	return w
}

// Joinable reports whether a caller may open the meeting link right now.
func (w Window) Joinable(enrolled bool, meetingLink string) bool {
	return w.Live && enrolled && strings.TrimSpace(meetingLink) != ""
}
