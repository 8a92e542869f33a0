package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type sessionCompleter interface {
	CompleteFinished(ctx context.Context, now time.Time) (int64, error)
}

// SweepService periodically persists the completed status of finished
// sessions. Reads already derive it, so a missed sweep is harmless.
type SweepService struct {
	store    sessionCompleter
	metrics  *MetricsService
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweepService constructs the sweep. A non-positive interval disables Run.
func NewSweepService(store sessionCompleter, metrics *MetricsService, interval time.Duration, logger *zap.Logger) *SweepService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepService{store: store, metrics: metrics, interval: interval, logger: logger, now: time.Now}
}

// Enabled reports whether Run does anything.
func (s *SweepService) Enabled() bool {
	return s != nil && s.interval > 0
}

// Run sweeps every interval until ctx is done.
func (s *SweepService) Run(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.Info("session sweep started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweep stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Warn("session sweep failed", zap.Error(err))
			}
		}
	}
}

// RunOnce completes every finished session and returns how many changed.
func (s *SweepService) RunOnce(ctx context.Context) (int64, error) {
	completed, err := s.store.CompleteFinished(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.metrics.AddSweptSessions(completed)
	if completed > 0 {
		s.logger.Info("sessions completed", zap.Int64("count", completed))
	}
	return completed, nil
}
