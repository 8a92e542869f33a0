package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/consulting-sessions-api/internal/dto"
	"github.com/noah-isme/consulting-sessions-api/internal/models"
	appErrors "github.com/noah-isme/consulting-sessions-api/pkg/errors"
	"github.com/noah-isme/consulting-sessions-api/pkg/notify"
)

type bookingStore interface {
	Enroll(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error)
	CancelEnrollment(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error)
}

type sessionNotifier interface {
	Notify(userID string, event notify.Event)
}

// BookingService enrolls users into sessions and releases their seats.
// The check-and-mutate sequence runs inside the store under the session lock;
// this layer only translates outcomes and fires notifications after commit.
type BookingService struct {
	store    bookingStore
	notifier sessionNotifier
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService constructs the booking service.
func NewBookingService(store bookingStore, notifier sessionNotifier, metrics *MetricsService, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{store: store, notifier: notifier, metrics: metrics, logger: logger, now: time.Now}
}

// Enroll claims a seat. Enrolling twice returns the existing seat with
// AlreadyEnrolled set and leaves the counters untouched.
func (s *BookingService) Enroll(ctx context.Context, sessionID, userID string) (*dto.BookingResponse, error) {
	req, err := s.request(sessionID, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.store.Enroll(ctx, req)
	if err != nil {
		return nil, s.fail(OperationEnroll, req, err)
	}

	resp := bookingResponse(result)
	if !result.Changed {
		resp.AlreadyEnrolled = true
		s.metrics.RecordBooking(OperationEnroll, OutcomeAlreadyEnrolled)
		return resp, nil
	}

	s.metrics.RecordBooking(OperationEnroll, OutcomeSuccess)
	s.logger.Info("session enrollment created",
		zap.String("session_id", req.SessionID),
		zap.String("user_id", req.UserID),
		zap.Int("participants", result.Session.CurrentParticipants),
		zap.String("status", string(result.Session.Status)),
	)
	s.notify(notify.EventEnrolled, req.UserID, result.Session)
	return resp, nil
}

// Cancel releases the caller's seat.
func (s *BookingService) Cancel(ctx context.Context, sessionID, userID string) (*dto.BookingResponse, error) {
	req, err := s.request(sessionID, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.store.CancelEnrollment(ctx, req)
	if err != nil {
		return nil, s.fail(OperationCancel, req, err)
	}

	s.metrics.RecordBooking(OperationCancel, OutcomeSuccess)
	s.logger.Info("session enrollment cancelled",
		zap.String("session_id", req.SessionID),
		zap.String("user_id", req.UserID),
		zap.Int("participants", result.Session.CurrentParticipants),
		zap.String("status", string(result.Session.Status)),
	)
	s.notify(notify.EventEnrollmentCancelled, req.UserID, result.Session)
	return bookingResponse(result), nil
}

func (s *BookingService) request(sessionID, userID string) (models.BookingRequest, error) {
	if strings.TrimSpace(userID) == "" {
		return models.BookingRequest{}, appErrors.ErrUnauthorized
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return models.BookingRequest{}, appErrors.ErrSessionNotFound
	}
	return models.BookingRequest{SessionID: sessionID, UserID: userID, Now: s.now()}, nil
}

func (s *BookingService) fail(operation string, req models.BookingRequest, err error) error {
	appErr, outcome := translateStoreError(err)
	s.metrics.RecordBooking(operation, outcome)
	if outcome == OutcomeError {
		s.logger.Error("booking operation failed",
			zap.String("operation", operation),
			zap.String("session_id", req.SessionID),
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
	}
	return appErr
}

func (s *BookingService) notify(eventType, userID string, session models.Session) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(userID, notify.Event{
		Type:      eventType,
		SessionID: session.ID,
		Data: map[string]string{
			"title":        session.Title,
			"scheduled_at": session.ScheduledAt.UTC().Format(time.RFC3339),
		},
	})
}

func bookingResponse(result *models.BookingResult) *dto.BookingResponse {
	resp := &dto.BookingResponse{
		SessionID:       result.Session.ID,
		Status:          string(result.Session.Status),
		Participants:    result.Session.CurrentParticipants,
		MaxParticipants: result.Session.MaxParticipants,
	}
	if e := result.Enrollment; e != nil {
		enrolledAt := e.EnrolledAt
		resp.EnrollmentID = e.ID
		resp.EnrolledAt = &enrolledAt
		resp.CancelledAt = e.CancelledAt
	}
	return resp
}
