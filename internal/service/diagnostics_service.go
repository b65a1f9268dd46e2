package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/internal/repository"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
)

// DiagnosticsService reports on configuration and data source access. It never fails;
// problems are described in the report.
type DiagnosticsService struct {
	store   sheetStore
	cfg     config.SheetConfig
	backend string
	logger  *zap.Logger
}

// NewDiagnosticsService constructs the service. backend names the configured row store.
func NewDiagnosticsService(store sheetStore, cfg config.SheetConfig, backend string, logger *zap.Logger) *DiagnosticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiagnosticsService{store: store, cfg: cfg, backend: backend, logger: logger}
}

// Report inspects the timetable sheet and returns what was found.
func (s *DiagnosticsService) Report(ctx context.Context) models.DiagnosticsReport {
	report := models.DiagnosticsReport{Backend: s.backend}
	if err := s.cfg.Validate(); err != nil {
		report.Error = err.Error()
		return report
	}

	report.ConfigLoaded = true
	report.ConfigDetails = &models.ConfigDetail{
		SpreadsheetID: s.cfg.SpreadsheetID,
		SheetName:     s.cfg.TimetableSheet,
		DataRange:     s.cfg.DataRange,
	}

	rng, err := models.ParseCellRange(s.cfg.DataRange)
	if err != nil {
		report.Error = fmt.Sprintf("invalid data range: %v", err)
		return report
	}

	sheet, err := s.store.OpenSheet(ctx, s.cfg.SpreadsheetID, s.cfg.TimetableSheet)
	if err != nil {
		if errors.Is(err, repository.ErrSheetNotFound) {
			report.SpreadsheetAccess = true
			report.Error = fmt.Sprintf("sheet %q not found", s.cfg.TimetableSheet)
			return report
		}
		report.Error = fmt.Sprintf("spreadsheet access error: %v", err)
		s.logger.Warn("diagnostics: data source unreachable", zap.Error(err))
		return report
	}
	report.SpreadsheetAccess = true
	report.SheetAccess = true

	rows, err := sheet.Rows(ctx, rng)
	if err != nil {
		report.Error = fmt.Sprintf("sheet read error: %v", err)
		return report
	}
	for _, row := range rows {
		if IsPresent(row) {
			report.RowCount++
		}
	}
	report.ColumnCount = rng.Width()
	return report
}
