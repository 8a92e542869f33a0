package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultStreamMaxLen = 100000

// RedisStreamPublisher appends events to a Redis stream consumed by the
// notification workers of the dashboard.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamPublisher constructs a publisher writing to stream.
func NewRedisStreamPublisher(client *redis.Client, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: defaultStreamMaxLen}
}

// Publish appends the event with XADD, trimming the stream approximately.
func (p *RedisStreamPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := event.Encode()
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	args := &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"event_id":    event.ID,
			"type":        event.Type,
			"user_id":     event.UserID,
			"session_id":  event.SessionID,
			"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
			"payload":     payload,
		},
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis xadd %s: %w", p.stream, err)
	}
	return nil
}

// Close leaves the shared client open; its owner closes it.
func (p *RedisStreamPublisher) Close() error { return nil }
