package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher only records events; used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher constructs a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.Info("session notification",
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.String("user_id", event.UserID),
		zap.String("session_id", event.SessionID),
	)
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error { return nil }
