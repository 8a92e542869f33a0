package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/consulting-sessions-api/internal/dto"
	"github.com/noah-isme/consulting-sessions-api/internal/models"
	appErrors "github.com/noah-isme/consulting-sessions-api/pkg/errors"
	"github.com/noah-isme/consulting-sessions-api/pkg/response"
)

type sessionQueryService interface {
	List(ctx context.Context, rng models.SessionRange, userID string) ([]dto.SessionView, error)
	Get(ctx context.Context, sessionID, userID string) (*dto.SessionView, error)
}

type bookingService interface {
	Enroll(ctx context.Context, sessionID, userID string) (*dto.BookingResponse, error)
	Cancel(ctx context.Context, sessionID, userID string) (*dto.BookingResponse, error)
}

// SessionHandler exposes session listing and booking endpoints.
type SessionHandler struct {
	queries  sessionQueryService
	bookings bookingService
}

// NewSessionHandler builds a new handler.
func NewSessionHandler(queries sessionQueryService, bookings bookingService) *SessionHandler {
	return &SessionHandler{queries: queries, bookings: bookings}
}

// List godoc
// @Summary List consulting sessions
// @Tags Sessions
// @Produce json
// @Param range query string false "upcoming (default), past or live"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	rng := models.SessionRange(strings.ToLower(c.DefaultQuery("range", string(models.SessionRangeUpcoming))))
	if !rng.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "range must be one of upcoming, past, live"))
		return
	}
	views, err := h.queries.List(c.Request.Context(), rng, callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, map[string]interface{}{"range": rng, "count": len(views)})
}

// Get godoc
// @Summary Get a consulting session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.queries.Get(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Enroll godoc
// @Summary Enroll the caller into a session
// @Description Returns 201 when a seat was taken and 200 when the caller already held one.
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id}/enroll [post]
func (h *SessionHandler) Enroll(c *gin.Context) {
	result, err := h.bookings.Enroll(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.AlreadyEnrolled {
		response.JSON(c, http.StatusOK, result)
		return
	}
	response.Created(c, result)
}

// Cancel godoc
// @Summary Cancel the caller's enrollment
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id}/enroll [delete]
func (h *SessionHandler) Cancel(c *gin.Context) {
	result, err := h.bookings.Cancel(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
