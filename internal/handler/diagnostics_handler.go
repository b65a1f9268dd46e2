package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/pkg/response"
)

type diagnosticsService interface {
	Report(ctx context.Context) models.DiagnosticsReport
}

// DiagnosticsHandler reports configuration and data source health.
type DiagnosticsHandler struct {
	service diagnosticsService
}

// NewDiagnosticsHandler constructs the handler.
func NewDiagnosticsHandler(svc diagnosticsService) *DiagnosticsHandler {
	return &DiagnosticsHandler{service: svc}
}

// Report godoc
// @Summary Inspect configuration and data source access
// @Description Always answers 200; failures are described inside the report.
// @Tags Operations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /diagnostics [get]
func (h *DiagnosticsHandler) Report(c *gin.Context) {
	response.OK(c, h.service.Report(c.Request.Context()))
}
