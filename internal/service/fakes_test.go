package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/consulting-sessions-api/internal/models"
	"github.com/noah-isme/consulting-sessions-api/internal/repository"
	appErrors "github.com/noah-isme/consulting-sessions-api/pkg/errors"
	"github.com/noah-isme/consulting-sessions-api/pkg/notify"
)

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type notifierStub struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *notifierStub) Notify(userID string, event notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	event.UserID = userID
	n.events = append(n.events, event)
}

func (n *notifierStub) Events() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

type cacheRepoStub struct {
	mu       sync.Mutex
	values   map[string][]byte
	ttls     map[string]time.Duration
	patterns []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	c.ttls[key] = ttl
	return nil
}

func (c *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	c.values = map[string][]byte{}
	return nil
}

type sessionSeed struct {
	id          string
	scheduledAt time.Time
	duration    int
	capacity    int
	status      models.SessionStatus
}

func newSeededStore(t *testing.T, seeds ...sessionSeed) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	for _, seed := range seeds {
		status := seed.status
		if status == "" {
			status = models.SessionStatusAvailable
		}
		require.NoError(t, store.Create(context.Background(), &models.Session{
			ID:              seed.id,
			Title:           "Session " + seed.id,
			Description:     "Group consulting",
			Instructor:      "Ana Souza",
			ScheduledAt:     seed.scheduledAt,
			DurationMinutes: seed.duration,
			MaxParticipants: seed.capacity,
			Status:          status,
			Platform:        "zoom",
			MeetingLink:     "https://meet.example/" + seed.id,
		}))
	}
	return store
}

// counterValue reads one sample from the registry without extra test deps.
func counterValue(t *testing.T, m *MetricsService, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := 0
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] == pair.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}
