package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/consulting-sessions-api/internal/dto"
	"github.com/noah-isme/consulting-sessions-api/internal/middleware"
	"github.com/noah-isme/consulting-sessions-api/internal/models"
	"github.com/noah-isme/consulting-sessions-api/internal/service"
	appErrors "github.com/noah-isme/consulting-sessions-api/pkg/errors"
)

type adminServiceMock struct {
	session     *dto.AdminSessionResponse
	roster      *dto.SessionRoster
	file        *service.RosterFile
	err         error
	createReq   dto.CreateSessionRequest
	updateReq   dto.UpdateSessionRequest
	lastFormat  string
	createCalls int
}

func (m *adminServiceMock) Create(ctx context.Context, req dto.CreateSessionRequest) (*dto.AdminSessionResponse, error) {
	m.createCalls++
	m.createReq = req
	return m.session, m.err
}

func (m *adminServiceMock) Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*dto.AdminSessionResponse, error) {
	m.updateReq = req
	return m.session, m.err
}

func (m *adminServiceMock) Cancel(ctx context.Context, id string) (*dto.AdminSessionResponse, error) {
	return m.session, m.err
}

func (m *adminServiceMock) Delete(ctx context.Context, id string) error {
	return m.err
}

func (m *adminServiceMock) Roster(ctx context.Context, id string) (*dto.SessionRoster, error) {
	return m.roster, m.err
}

func (m *adminServiceMock) ExportRoster(ctx context.Context, id, format string) (*service.RosterFile, error) {
	m.lastFormat = format
	return m.file, m.err
}

func newAdminContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	return c, w
}

func TestAdminSessionHandlerCreate(t *testing.T) {
	mockSvc := &adminServiceMock{session: &dto.AdminSessionResponse{ID: "s1"}}
	handler := NewAdminSessionHandler(mockSvc)

	c, w := newAdminContext(http.MethodPost, "/admin/sessions",
		`{"title":"Pricing","instructor":"Ana","scheduledAt":"2026-04-01T13:00:00Z","durationMinutes":60,"maxParticipants":10}`)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Pricing", mockSvc.createReq.Title)
	assert.Equal(t, 10, mockSvc.createReq.MaxParticipants)
}

func TestAdminSessionHandlerCreateInvalidBody(t *testing.T) {
	mockSvc := &adminServiceMock{}
	handler := NewAdminSessionHandler(mockSvc)

	c, w := newAdminContext(http.MethodPost, "/admin/sessions", `{"title":`)
	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockSvc.createCalls)
}

func TestAdminSessionHandlerUpdateConflict(t *testing.T) {
	mockSvc := &adminServiceMock{err: appErrors.ErrCapacityBelowEnrollment}
	handler := NewAdminSessionHandler(mockSvc)

	c, w := newAdminContext(http.MethodPatch, "/admin/sessions/s1", `{"maxParticipants":1}`)
	handler.Update(c)

	require.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, mockSvc.updateReq.MaxParticipants)
	assert.Equal(t, 1, *mockSvc.updateReq.MaxParticipants)
	assert.Nil(t, mockSvc.updateReq.Title)
}

func TestAdminSessionHandlerDelete(t *testing.T) {
	handler := NewAdminSessionHandler(&adminServiceMock{})

	c, w := newAdminContext(http.MethodDelete, "/admin/sessions/s1", "")
	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminSessionHandlerExportRoster(t *testing.T) {
	mockSvc := &adminServiceMock{file: &service.RosterFile{Filename: "roster-s1.csv", ContentType: "text/csv", Body: []byte("a,b\n")}}
	handler := NewAdminSessionHandler(mockSvc)

	c, w := newAdminContext(http.MethodGet, "/admin/sessions/s1/roster/export?format=csv", "")
	c.Request.URL.RawQuery = "format=csv"
	handler.ExportRoster(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockSvc.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "roster-s1.csv")
	assert.Equal(t, "a,b\n", w.Body.String())
}
