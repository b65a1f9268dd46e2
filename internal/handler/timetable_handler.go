package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/timetable-admin-api/internal/dto"
	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/internal/service"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
	"github.com/noah-isme/timetable-admin-api/pkg/response"
)

type timetableService interface {
	Records(ctx context.Context) ([]models.SessionRecord, error)
	ListModules(ctx context.Context) ([]models.ModuleRef, error)
	ListPeriods(ctx context.Context) ([]string, error)
	GetModuleData(ctx context.Context, module, period string) (*models.ModuleData, error)
}

type moduleExporter interface {
	ExportModule(ctx context.Context, module, period, format string) (*service.ExportFile, error)
}

// TimetableHandler serves the read side of the timetable.
type TimetableHandler struct {
	service   timetableService
	exporter  moduleExporter
	validator *validator.Validate
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableService, exporter moduleExporter, validate *validator.Validate) *TimetableHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &TimetableHandler{service: svc, exporter: exporter, validator: validate}
}

// Timetable godoc
// @Summary List every timetable session
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Timetable(c *gin.Context) {
	records, err := h.service.Records(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, records, map[string]interface{}{"count": len(records)})
}

// Modules godoc
// @Summary List (period, module) pairs
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /modules [get]
func (h *TimetableHandler) Modules(c *gin.Context) {
	modules, err := h.service.ListModules(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, modules)
}

// Periods godoc
// @Summary List teaching periods
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods [get]
func (h *TimetableHandler) Periods(c *gin.Context) {
	periods, err := h.service.ListPeriods(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, periods)
}

// ModuleSessions godoc
// @Summary Sessions of a module in a period, grouped for display
// @Tags Timetable
// @Produce json
// @Param module query string true "Module name"
// @Param period query string true "Teaching period"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /modules/sessions [get]
func (h *TimetableHandler) ModuleSessions(c *gin.Context) {
	var query dto.ModuleQuery
	if !h.bindQuery(c, &query) {
		return
	}
	data, err := h.service.GetModuleData(c.Request.Context(), query.Module, query.Period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, data)
}

// Export godoc
// @Summary Download a module's sessions
// @Tags Timetable
// @Produce octet-stream
// @Param module query string true "Module name"
// @Param period query string true "Teaching period"
// @Param format query string false "csv, pdf, xlsx or ics" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /modules/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if !h.bindQuery(c, &query) {
		return
	}
	file, err := h.exporter.ExportModule(c.Request.Context(), query.Module, query.Period, query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.FileName, file.ContentType, file.Content)
}

func (h *TimetableHandler) bindQuery(c *gin.Context, dest interface{}) bool {
	return bindAndValidate(c, h.validator, dest, c.ShouldBindQuery)
}

// bindAndValidate decodes with bind and runs the validator, rendering a 400 on failure.
func bindAndValidate(c *gin.Context, v *validator.Validate, dest interface{}, bind func(interface{}) error) bool {
	if err := bind(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request"))
		return false
	}
	if err := v.Struct(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, validationMessage(err)))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fe.Field() + " failed " + fe.Tag() + " validation"
	}
	return "invalid request"
}
