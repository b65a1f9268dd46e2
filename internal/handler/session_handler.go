package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/timetable-admin-api/internal/dto"
	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
	"github.com/noah-isme/timetable-admin-api/pkg/response"
)

type sessionUpdateService interface {
	SetField(ctx context.Context, uid string, columnIndex int, value models.CellValue) error
	SetFieldWithDateRecalc(ctx context.Context, uid string, columnIndex int, value models.CellValue, period, week string) error
	BatchUpdate(ctx context.Context, changes []models.SessionChange) (*models.BatchUpdateResult, error)
}

// SessionHandler applies edits to timetable sessions.
type SessionHandler struct {
	service   sessionUpdateService
	validator *validator.Validate
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(svc sessionUpdateService, validate *validator.Validate) *SessionHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &SessionHandler{service: svc, validator: validate}
}

// Update godoc
// @Summary Write one column of a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Session uid"
// @Param payload body dto.UpdateSessionRequest true "Column and value"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{uid} [patch]
func (h *SessionHandler) Update(c *gin.Context) {
	uid, ok := sessionUID(c)
	if !ok {
		return
	}
	var req dto.UpdateSessionRequest
	if !bindAndValidate(c, h.validator, &req, c.ShouldBindJSON) {
		return
	}
	if err := h.service.SetField(c.Request.Context(), uid, *req.ColumnIndex, req.Cell()); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"uid": uid, "column_index": *req.ColumnIndex})
}

// UpdateWithDate godoc
// @Summary Write one column of a session, recomputing the date on day edits
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Session uid"
// @Param payload body dto.UpdateSessionWithDateRequest true "Column, value, period and week"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{uid}/with-date [patch]
func (h *SessionHandler) UpdateWithDate(c *gin.Context) {
	uid, ok := sessionUID(c)
	if !ok {
		return
	}
	var req dto.UpdateSessionWithDateRequest
	if !bindAndValidate(c, h.validator, &req, c.ShouldBindJSON) {
		return
	}
	err := h.service.SetFieldWithDateRecalc(c.Request.Context(), uid, *req.ColumnIndex, req.Cell(), string(req.Period), string(req.Week))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"uid": uid, "column_index": *req.ColumnIndex})
}

// Batch godoc
// @Summary Apply several session edits
// @Description Unknown uids are skipped; the result counts the sessions actually updated.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BatchUpdateRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/batch [post]
func (h *SessionHandler) Batch(c *gin.Context) {
	var req dto.BatchUpdateRequest
	if !bindAndValidate(c, h.validator, &req, c.ShouldBindJSON) {
		return
	}
	result, err := h.service.BatchUpdate(c.Request.Context(), req.ToModel())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

func sessionUID(c *gin.Context) (string, bool) {
	uid := strings.TrimSpace(c.Param("uid"))
	if uid == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "uid is required"))
		return "", false
	}
	return uid, true
}
