package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/timetable-admin-api/internal/dto"
	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/pkg/response"
)

type academicCalendarService interface {
	LoadCalendar(ctx context.Context) ([]models.CalendarEntry, error)
	ResolveDate(ctx context.Context, period, week, day string) (*models.ResolvedDate, error)
}

// CalendarHandler exposes the academic calendar and date resolution.
type CalendarHandler struct {
	service   academicCalendarService
	validator *validator.Validate
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc academicCalendarService, validate *validator.Validate) *CalendarHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &CalendarHandler{service: svc, validator: validate}
}

// Calendar godoc
// @Summary List teaching periods and their start dates
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic-calendar [get]
func (h *CalendarHandler) Calendar(c *gin.Context) {
	entries, err := h.service.LoadCalendar(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// Resolve godoc
// @Summary Resolve the date of a (period, week, day) triple
// @Tags Calendar
// @Produce json
// @Param period query string true "Teaching period"
// @Param week query string true "Week number, 1-based"
// @Param day query string true "English weekday name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /academic-calendar/resolve [get]
func (h *CalendarHandler) Resolve(c *gin.Context) {
	var query dto.ResolveDateQuery
	if !bindAndValidate(c, h.validator, &query, c.ShouldBindQuery) {
		return
	}
	resolved, err := h.service.ResolveDate(c.Request.Context(), query.Period, query.Week, query.Day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resolved)
}
