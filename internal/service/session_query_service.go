package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/consulting-sessions-api/internal/dto"
	"github.com/noah-isme/consulting-sessions-api/internal/models"
	appErrors "github.com/noah-isme/consulting-sessions-api/pkg/errors"
)

type sessionReader interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, rng models.SessionRange, now time.Time) ([]models.Session, error)
	NextEndAfter(ctx context.Context, now time.Time) (*time.Time, error)
}

type enrollmentReader interface {
	HasActive(ctx context.Context, sessionID, userID string) (bool, error)
	ActiveSessionIDs(ctx context.Context, userID string, sessionIDs []string) (map[string]bool, error)
}

// pastListing is the cached form of a past listing. Views are rebuilt from it
// on every read so the time-derived flags stay current.
type pastListing struct {
	Sessions []models.Session `json:"sessions"`
	Enrolled map[string]bool  `json:"enrolled"`
}

// SessionQueryService answers session listings for one caller.
type SessionQueryService struct {
	sessions    sessionReader
	enrollments enrollmentReader
	cache       *CacheService
	location    *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

// NewSessionQueryService constructs the query service. Dates and times are
// rendered in location, UTC when nil.
func NewSessionQueryService(sessions sessionReader, enrollments enrollmentReader, cache *CacheService, location *time.Location, logger *zap.Logger) *SessionQueryService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionQueryService{
		sessions:    sessions,
		enrollments: enrollments,
		cache:       cache,
		location:    location,
		logger:      logger,
		now:         time.Now,
	}
}

// List dispatches on the requested range.
func (s *SessionQueryService) List(ctx context.Context, rng models.SessionRange, userID string) ([]dto.SessionView, error) {
	switch rng {
	case models.SessionRangeUpcoming:
		return s.ListUpcoming(ctx, userID)
	case models.SessionRangePast:
		return s.ListPast(ctx, userID)
	case models.SessionRangeLive:
		return s.ListLive(ctx, userID)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "range must be one of upcoming, past, live")
	}
}

// ListUpcoming returns sessions that are neither finished nor terminal.
func (s *SessionQueryService) ListUpcoming(ctx context.Context, userID string) ([]dto.SessionView, error) {
	now := s.now()
	sessions, enrolled, err := s.load(ctx, models.SessionRangeUpcoming, userID, now)
	if err != nil {
		return nil, err
	}
	return s.views(sessions, enrolled, now), nil
}

// ListPast returns finished, completed and cancelled sessions.
func (s *SessionQueryService) ListPast(ctx context.Context, userID string) ([]dto.SessionView, error) {
	now := s.now()
	key := PastListingKey(userID)

	var cached pastListing
	if s.cache.Get(ctx, key, &cached) {
		return s.views(cached.Sessions, cached.Enrolled, now), nil
	}

	sessions, enrolled, err := s.load(ctx, models.SessionRangePast, userID, now)
	if err != nil {
		return nil, err
	}
	if s.cache.Enabled() {
		s.cache.Set(ctx, key, pastListing{Sessions: sessions, Enrolled: enrolled}, s.pastTTL(ctx, now))
	}
	return s.views(sessions, enrolled, now), nil
}

// ListLive returns sessions whose join window is open right now.
func (s *SessionQueryService) ListLive(ctx context.Context, userID string) ([]dto.SessionView, error) {
	now := s.now()
	var live []models.Session
	for _, rng := range []models.SessionRange{models.SessionRangeUpcoming, models.SessionRangePast} {
		sessions, err := s.sessions.List(ctx, rng, now)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
		}
		for _, session := range sessions {
			if session.Status != models.SessionStatusCancelled && session.Window(now).Live {
				live = append(live, session)
			}
		}
	}
	enrolled, err := s.annotate(ctx, userID, live)
	if err != nil {
		return nil, err
	}
	return s.views(live, enrolled, now), nil
}

// Get returns one session as seen by the caller.
func (s *SessionQueryService) Get(ctx context.Context, sessionID, userID string) (*dto.SessionView, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		appErr, _ := translateStoreError(err)
		return nil, appErr
	}
	enrolled := false
	if userID != "" {
		enrolled, err = s.enrollments.HasActive(ctx, sessionID, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
	}
	view := s.view(*session, enrolled, s.now())
	return &view, nil
}

func (s *SessionQueryService) load(ctx context.Context, rng models.SessionRange, userID string, now time.Time) ([]models.Session, map[string]bool, error) {
	sessions, err := s.sessions.List(ctx, rng, now)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	enrolled, err := s.annotate(ctx, userID, sessions)
	if err != nil {
		return nil, nil, err
	}
	return sessions, enrolled, nil
}

func (s *SessionQueryService) annotate(ctx context.Context, userID string, sessions []models.Session) (map[string]bool, error) {
	if userID == "" || len(sessions) == 0 {
		return map[string]bool{}, nil
	}
	ids := make([]string, len(sessions))
	for i := range sessions {
		ids[i] = sessions[i].ID
	}
	enrolled, err := s.enrollments.ActiveSessionIDs(ctx, userID, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	return enrolled, nil
}

// pastTTL expires a cached past listing no later than the next moment a
// session moves into the past partition by finishing.
func (s *SessionQueryService) pastTTL(ctx context.Context, now time.Time) time.Duration {
	next, err := s.sessions.NextEndAfter(ctx, now)
	if err != nil {
		s.logger.Warn("next session end lookup failed", zap.Error(err))
		return time.Second
	}
	if next == nil {
		return 0
	}
	ttl := next.Sub(now) + time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func (s *SessionQueryService) views(sessions []models.Session, enrolled map[string]bool, now time.Time) []dto.SessionView {
	views := make([]dto.SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, s.view(session, enrolled[session.ID], now))
	}
	return views
}

func (s *SessionQueryService) view(session models.Session, enrolled bool, now time.Time) dto.SessionView {
	window := session.Window(now)
	open := session.Status != models.SessionStatusCancelled
	local := session.ScheduledAt.In(s.location)

	view := dto.SessionView{
		ID:              session.ID,
		Title:           session.Title,
		Description:     session.Description,
		Date:            local.Format(dto.SessionDateLayout),
		Time:            local.Format(dto.SessionTimeLayout),
		ScheduledAt:     session.ScheduledAt.UTC(),
		Duration:        session.DurationMinutes,
		Participants:    session.CurrentParticipants,
		MaxParticipants: session.MaxParticipants,
		Status:          string(session.EffectiveStatus(now)),
		Instructor:      session.Instructor,
		Platform:        session.Platform,
		IsEnrolled:      enrolled,
		IsLive:          open && window.Live,
		IsJoinable:      open && window.Joinable(enrolled, session.MeetingLink),
		IsFinished:      window.Finished,
	}
	if enrolled && session.MeetingLink != "" {
		link := session.MeetingLink
		view.MeetingLink = &link
	}
	return view
}
