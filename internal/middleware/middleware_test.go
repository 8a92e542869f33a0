package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/consulting-sessions-api/internal/models"
	appErrors "github.com/noah-isme/consulting-sessions-api/pkg/errors"
)

type tokenValidatorStub struct {
	claims *models.JWTClaims
	err    error
	seen   string
}

func (s *tokenValidatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	s.seen = token
	return s.claims, s.err
}

type observedRequest struct {
	method string
	path   string
	status int
}

type observerStub struct {
	requests []observedRequest
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	o.requests = append(o.requests, observedRequest{method: method, path: path, status: status})
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/sessions/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func serve(router *gin.Engine, header string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/s1", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestJWTMiddleware(t *testing.T) {
	validator := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "user-1", Role: models.RoleMember}}
	router := newTestRouter(JWT(validator))

	assert.Equal(t, http.StatusUnauthorized, serve(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Basic abc").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, "Bearer abc.def").Code)
	assert.Equal(t, "abc.def", validator.seen)

	validator.err = appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Bearer abc.def").Code)
}

func TestRequireRoles(t *testing.T) {
	member := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "user-1", Role: models.RoleMember}}
	admin := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "user-2", Role: models.RoleAdmin}}

	assert.Equal(t, http.StatusForbidden, serve(newTestRouter(JWT(member), RequireRoles(models.RoleAdmin)), "Bearer x").Code)
	assert.Equal(t, http.StatusNoContent, serve(newTestRouter(JWT(admin), RequireRoles(models.RoleAdmin)), "Bearer x").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(newTestRouter(RequireRoles(models.RoleAdmin)), "").Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	observer := &observerStub{}
	router := newTestRouter(Metrics(observer))

	serve(router, "")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, []observedRequest{
		{method: http.MethodGet, path: "/sessions/:id", status: http.StatusNoContent},
		{method: http.MethodGet, path: "unmatched", status: http.StatusNotFound},
	}, observer.requests)
}
