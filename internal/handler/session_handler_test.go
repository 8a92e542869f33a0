package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/consulting-sessions-api/internal/dto"
	"github.com/noah-isme/consulting-sessions-api/internal/middleware"
	"github.com/noah-isme/consulting-sessions-api/internal/models"
	appErrors "github.com/noah-isme/consulting-sessions-api/pkg/errors"
)

type sessionQueryMock struct {
	views     []dto.SessionView
	view      *dto.SessionView
	err       error
	lastRange models.SessionRange
	lastUser  string
}

func (m *sessionQueryMock) List(ctx context.Context, rng models.SessionRange, userID string) ([]dto.SessionView, error) {
	m.lastRange = rng
	m.lastUser = userID
	return m.views, m.err
}

func (m *sessionQueryMock) Get(ctx context.Context, sessionID, userID string) (*dto.SessionView, error) {
	m.lastUser = userID
	return m.view, m.err
}

type bookingMock struct {
	resp        *dto.BookingResponse
	err         error
	lastSession string
	lastUser    string
}

func (m *bookingMock) Enroll(ctx context.Context, sessionID, userID string) (*dto.BookingResponse, error) {
	m.lastSession, m.lastUser = sessionID, userID
	return m.resp, m.err
}

func (m *bookingMock) Cancel(ctx context.Context, sessionID, userID string) (*dto.BookingResponse, error) {
	m.lastSession, m.lastUser = sessionID, userID
	return m.resp, m.err
}

func newSessionContext(method, target, sessionID string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, nil)
	c.Request = req
	if sessionID != "" {
		c.Params = gin.Params{{Key: "id", Value: sessionID}}
	}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleMember})
	return c, w
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSessionHandlerListDefaultsToUpcoming(t *testing.T) {
	mockSvc := &sessionQueryMock{views: []dto.SessionView{{ID: "s1"}}}
	handler := NewSessionHandler(mockSvc, &bookingMock{})

	c, w := newSessionContext(http.MethodGet, "/sessions", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SessionRangeUpcoming, mockSvc.lastRange)
	assert.Equal(t, "user-1", mockSvc.lastUser)
	env := decodeEnvelope(t, w)
	assert.EqualValues(t, 1, env.Meta["count"])
}

func TestSessionHandlerListRejectsUnknownRange(t *testing.T) {
	handler := NewSessionHandler(&sessionQueryMock{}, &bookingMock{})

	c, w := newSessionContext(http.MethodGet, "/sessions?range=soon", "")
	handler.List(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, w).Error.Code)
}

func TestSessionHandlerMeetingLinkOnlyForEnrolled(t *testing.T) {
	link := "https://meet.example/s1"
	mockSvc := &sessionQueryMock{views: []dto.SessionView{
		{ID: "s1", IsEnrolled: true, MeetingLink: &link},
		{ID: "s2"},
	}}
	handler := NewSessionHandler(mockSvc, &bookingMock{})

	c, w := newSessionContext(http.MethodGet, "/sessions?range=past", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SessionRangePast, mockSvc.lastRange)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, link, items[0]["meetingLink"])
	assert.NotContains(t, items[1], "meetingLink")
}

func TestSessionHandlerEnrollStatusCodes(t *testing.T) {
	booking := &bookingMock{resp: &dto.BookingResponse{SessionID: "s1", Participants: 1}}
	handler := NewSessionHandler(&sessionQueryMock{}, booking)

	c, w := newSessionContext(http.MethodPost, "/sessions/s1/enroll", "s1")
	handler.Enroll(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "s1", booking.lastSession)
	assert.Equal(t, "user-1", booking.lastUser)

	booking.resp = &dto.BookingResponse{SessionID: "s1", Participants: 1, AlreadyEnrolled: true}
	c, w = newSessionContext(http.MethodPost, "/sessions/s1/enroll", "s1")
	handler.Enroll(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionHandlerBookingErrors(t *testing.T) {
	cases := []struct {
		err    *appErrors.Error
		status int
	}{
		{appErrors.ErrSessionFull, http.StatusConflict},
		{appErrors.ErrSessionNotFound, http.StatusNotFound},
		{appErrors.ErrSessionCancelledOrFinished, http.StatusConflict},
	}
	for _, tc := range cases {
		handler := NewSessionHandler(&sessionQueryMock{}, &bookingMock{err: tc.err})
		c, w := newSessionContext(http.MethodPost, "/sessions/s1/enroll", "s1")
		handler.Enroll(c)

		require.Equal(t, tc.status, w.Code, tc.err.Code)
		assert.Equal(t, tc.err.Code, decodeEnvelope(t, w).Error.Code)
	}
}

func TestSessionHandlerCancel(t *testing.T) {
	handler := NewSessionHandler(&sessionQueryMock{}, &bookingMock{err: appErrors.ErrSessionAlreadyFinished})

	c, w := newSessionContext(http.MethodDelete, "/sessions/s1/enroll", "s1")
	handler.Cancel(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SESSION_ALREADY_FINISHED", decodeEnvelope(t, w).Error.Code)
}
