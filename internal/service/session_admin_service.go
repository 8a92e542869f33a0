package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/consulting-sessions-api/internal/dto"
	"github.com/noah-isme/consulting-sessions-api/internal/models"
	appErrors "github.com/noah-isme/consulting-sessions-api/pkg/errors"
	"github.com/noah-isme/consulting-sessions-api/pkg/export"
	"github.com/noah-isme/consulting-sessions-api/pkg/notify"
)

type sessionAdminStore interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, id string, patch models.SessionPatch, now time.Time) (*models.Session, error)
	CancelSession(ctx context.Context, id string, now time.Time) (*models.SessionCancellation, error)
	Delete(ctx context.Context, id string) error
}

type rosterReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Enrollment, error)
}

type rosterRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// RosterFile is a rendered roster export.
type RosterFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// SessionAdminService is the only writer of schedule and capacity fields.
type SessionAdminService struct {
	store     sessionAdminStore
	roster    rosterReader
	cache     *CacheService
	notifier  sessionNotifier
	metrics   *MetricsService
	validator *validator.Validate
	renderers map[string]rosterRenderer
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewSessionAdminService constructs the administration service.
func NewSessionAdminService(
	store sessionAdminStore,
	roster rosterReader,
	cache *CacheService,
	notifier sessionNotifier,
	metrics *MetricsService,
	validate *validator.Validate,
	location *time.Location,
	logger *zap.Logger,
) *SessionAdminService {
	if validate == nil {
		validate = validator.New()
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionAdminService{
		store:     store,
		roster:    roster,
		cache:     cache,
		notifier:  notifier,
		metrics:   metrics,
		validator: validate,
		renderers: map[string]rosterRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// Create schedules a new session.
func (s *SessionAdminService) Create(ctx context.Context, req dto.CreateSessionRequest) (*dto.AdminSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	status := models.SessionStatus(req.Status)
	if status == "" {
		status = models.SessionStatusScheduled
	}
	session := &models.Session{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Instructor:      strings.TrimSpace(req.Instructor),
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		MaxParticipants: req.MaxParticipants,
		Status:          status,
		Platform:        req.Platform,
		MeetingLink:     req.MeetingLink,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.cache.InvalidatePastListings(ctx)
	s.logger.Info("session created", zap.String("session_id", session.ID), zap.Time("scheduled_at", session.ScheduledAt))
	return s.adminView(session), nil
}

// Update applies a partial change. Capacity can never drop below the seats
// already taken.
func (s *SessionAdminService) Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*dto.AdminSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	patch := models.SessionPatch{
		Title:           req.Title,
		Description:     req.Description,
		Instructor:      req.Instructor,
		DurationMinutes: req.DurationMinutes,
		MaxParticipants: req.MaxParticipants,
		Platform:        req.Platform,
		MeetingLink:     req.MeetingLink,
	}
	if req.ScheduledAt != nil {
		at := req.ScheduledAt.UTC()
		patch.ScheduledAt = &at
	}
	if req.Status != nil {
		status := models.SessionStatus(*req.Status)
		patch.Status = &status
	}

	session, err := s.store.Update(ctx, id, patch, s.now())
	if err != nil {
		appErr, _ := translateStoreError(err)
		return nil, appErr
	}
	s.cache.InvalidatePastListings(ctx)
	s.logger.Info("session updated", zap.String("session_id", id), zap.String("status", string(session.Status)))
	return s.adminView(session), nil
}

// Cancel cancels a session and notifies everyone holding a seat. Cancelling
// twice is a no-op.
func (s *SessionAdminService) Cancel(ctx context.Context, id string) (*dto.AdminSessionResponse, error) {
	result, err := s.store.CancelSession(ctx, id, s.now())
	if err != nil {
		appErr, outcome := translateStoreError(err)
		s.metrics.RecordBooking(OperationAdminCancel, outcome)
		return nil, appErr
	}
	if !result.Changed {
		return s.adminView(&result.Session), nil
	}

	s.metrics.RecordBooking(OperationAdminCancel, OutcomeSuccess)
	s.cache.InvalidatePastListings(ctx)
	s.logger.Info("session cancelled", zap.String("session_id", id), zap.Int("attendees", len(result.Attendees)))
	if s.notifier != nil {
		for _, userID := range result.Attendees {
			s.notifier.Notify(userID, notify.Event{
				Type:      notify.EventSessionCancelled,
				SessionID: id,
				Data: map[string]string{
					"title":        result.Session.Title,
					"scheduled_at": result.Session.ScheduledAt.UTC().Format(time.RFC3339),
				},
			})
		}
	}
	return s.adminView(&result.Session), nil
}

// Delete removes a session without enrollment history.
func (s *SessionAdminService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		appErr, _ := translateStoreError(err)
		return appErr
	}
	s.cache.InvalidatePastListings(ctx)
	s.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// Roster returns the whole ledger of a session.
func (s *SessionAdminService) Roster(ctx context.Context, id string) (*dto.SessionRoster, error) {
	session, err := s.store.FindByID(ctx, id)
	if err != nil {
		appErr, _ := translateStoreError(err)
		return nil, appErr
	}
	rows, err := s.roster.ListBySession(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	roster := &dto.SessionRoster{Session: *s.adminView(session), Entries: make([]dto.RosterEntry, 0, len(rows))}
	for _, row := range rows {
		if row.IsActive() {
			roster.Active++
		}
		roster.Entries = append(roster.Entries, dto.RosterEntry{
			EnrollmentID: row.ID,
			UserID:       row.UserID,
			Status:       string(row.Status),
			EnrolledAt:   row.EnrolledAt,
			CancelledAt:  row.CancelledAt,
		})
	}
	return roster, nil
}

// ExportRoster renders the roster as csv or pdf.
func (s *SessionAdminService) ExportRoster(ctx context.Context, id, format string) (*RosterFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	roster, err := s.Roster(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(s.rosterDataset(roster))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	return &RosterFile{
		Filename:    fmt.Sprintf("roster-%s.%s", id, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *SessionAdminService) rosterDataset(roster *dto.SessionRoster) export.Dataset {
	local := roster.Session.ScheduledAt.In(s.location)
	data := export.Dataset{
		Title: roster.Session.Title,
		Notes: []string{
			fmt.Sprintf("Instructor: %s", roster.Session.Instructor),
			fmt.Sprintf("Scheduled: %s %s (%s)", local.Format(dto.SessionDateLayout), local.Format(dto.SessionTimeLayout), s.location),
			fmt.Sprintf("Seats: %d/%d, status %s", roster.Active, roster.Session.MaxParticipants, roster.Session.EffectiveStatus),
		},
		Headers: []string{"Enrollment", "User", "Status", "Enrolled At", "Cancelled At"},
		Rows:    make([]map[string]string, 0, len(roster.Entries)),
	}
	for _, entry := range roster.Entries {
		cancelled := ""
		if entry.CancelledAt != nil {
			cancelled = entry.CancelledAt.In(s.location).Format(time.RFC3339)
		}
		data.Rows = append(data.Rows, map[string]string{
			"Enrollment":   entry.EnrollmentID,
			"User":         entry.UserID,
			"Status":       entry.Status,
			"Enrolled At":  entry.EnrolledAt.In(s.location).Format(time.RFC3339),
			"Cancelled At": cancelled,
		})
	}
	return data
}

func (s *SessionAdminService) adminView(session *models.Session) *dto.AdminSessionResponse {
	return &dto.AdminSessionResponse{
		ID:                  session.ID,
		Title:               session.Title,
		Description:         session.Description,
		Instructor:          session.Instructor,
		ScheduledAt:         session.ScheduledAt.UTC(),
		DurationMinutes:     session.DurationMinutes,
		MaxParticipants:     session.MaxParticipants,
		CurrentParticipants: session.CurrentParticipants,
		Status:              string(session.Status),
		EffectiveStatus:     string(session.EffectiveStatus(s.now())),
		Platform:            session.Platform,
		MeetingLink:         session.MeetingLink,
		CreatedAt:           session.CreatedAt,
		UpdatedAt:           session.UpdatedAt,
	}
}
