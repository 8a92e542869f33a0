package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/consulting-sessions-api/internal/dto"
	"github.com/noah-isme/consulting-sessions-api/internal/service"
	appErrors "github.com/noah-isme/consulting-sessions-api/pkg/errors"
	"github.com/noah-isme/consulting-sessions-api/pkg/response"
)

type sessionAdminService interface {
	Create(ctx context.Context, req dto.CreateSessionRequest) (*dto.AdminSessionResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*dto.AdminSessionResponse, error)
	Cancel(ctx context.Context, id string) (*dto.AdminSessionResponse, error)
	Delete(ctx context.Context, id string) error
	Roster(ctx context.Context, id string) (*dto.SessionRoster, error)
	ExportRoster(ctx context.Context, id, format string) (*service.RosterFile, error)
}

// AdminSessionHandler exposes operator endpoints.
type AdminSessionHandler struct {
	service sessionAdminService
}

// NewAdminSessionHandler builds a new handler.
func NewAdminSessionHandler(service sessionAdminService) *AdminSessionHandler {
	return &AdminSessionHandler{service: service}
}

// Create godoc
// @Summary Schedule a session
// @Tags Admin Sessions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sessions [post]
func (h *AdminSessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	session, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Update a session
// @Tags Admin Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.UpdateSessionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sessions/{id} [patch]
func (h *AdminSessionHandler) Update(c *gin.Context) {
	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	session, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Cancel godoc
// @Summary Cancel a session
// @Tags Admin Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sessions/{id}/cancel [post]
func (h *AdminSessionHandler) Cancel(c *gin.Context) {
	session, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Delete godoc
// @Summary Delete a session without enrollment history
// @Tags Admin Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sessions/{id} [delete]
func (h *AdminSessionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Roster godoc
// @Summary Session roster
// @Tags Admin Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sessions/{id}/roster [get]
func (h *AdminSessionHandler) Roster(c *gin.Context) {
	roster, err := h.service.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster)
}

// ExportRoster godoc
// @Summary Download the session roster
// @Tags Admin Sessions
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Session ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /admin/sessions/{id}/roster/export [get]
func (h *AdminSessionHandler) ExportRoster(c *gin.Context) {
	file, err := h.service.ExportRoster(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
