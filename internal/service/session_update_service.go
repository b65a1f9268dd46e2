package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/internal/repository"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type calendarLoader interface {
	LoadCalendar(ctx context.Context) ([]models.CalendarEntry, error)
}

// SessionUpdateService writes edits back to the timetable, keeping the derived date
// column in line with the day, period and week columns.
type SessionUpdateService struct {
	store     sheetStore
	calendar  calendarLoader
	cfg       config.SheetConfig
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewSessionUpdateService constructs the service.
func NewSessionUpdateService(store sheetStore, calendar calendarLoader, cfg config.SheetConfig, metrics *MetricsService, logger *zap.Logger) *SessionUpdateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionUpdateService{store: store, calendar: calendar, cfg: cfg, metrics: metrics, logger: logger}
}

// sessionTable is an open timetable sheet plus its data range.
type sessionTable struct {
	sheet repository.Sheet
	rng   models.CellRange
}

func (s *SessionUpdateService) open(ctx context.Context) (*sessionTable, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	rng, err := models.ParseCellRange(s.cfg.DataRange)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfigMissing.Code, appErrors.ErrConfigMissing.Status, fmt.Sprintf("invalid range %q", s.cfg.DataRange))
	}
	sheet, err := openTable(ctx, s.store, s.cfg.SpreadsheetID, s.cfg.TimetableSheet)
	if err != nil {
		return nil, err
	}
	return &sessionTable{sheet: sheet, rng: rng}, nil
}

// locate scans the uid column and returns the physical row of the first match.
func (s *SessionUpdateService) locate(ctx context.Context, table *sessionTable, uid string) (int, bool, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return 0, false, nil
	}
	column, err := table.sheet.Rows(ctx, table.rng.Column(s.cfg.Columns.UID))
	if err != nil {
		return 0, false, appErrors.Backend(err, "failed to read record identifiers")
	}
	for i, row := range column {
		if len(row) > 0 && strings.TrimSpace(row[0].String()) == uid {
			return i + table.rng.StartRow, true, nil
		}
	}
	return 0, false, nil
}

func (s *SessionUpdateService) write(ctx context.Context, table *sessionTable, row, columnIndex int, value models.CellValue) error {
	if err := table.sheet.SetCell(ctx, row, table.rng.StartCol+columnIndex, value); err != nil {
		return appErrors.Backend(err, fmt.Sprintf("failed to write row %d column %d", row, columnIndex))
	}
	return nil
}

func (s *SessionUpdateService) checkColumn(table *sessionTable, columnIndex int) error {
	if columnIndex < 0 || columnIndex >= table.rng.Width() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("column index %d is outside the data range", columnIndex))
	}
	return nil
}

// SetField writes value into the given 0-based column of the record identified by uid.
func (s *SessionUpdateService) SetField(ctx context.Context, uid string, columnIndex int, value models.CellValue) error {
	table, err := s.open(ctx)
	if err != nil {
		return err
	}
	_, err = s.setField(ctx, table, uid, columnIndex, value)
	return err
}

func (s *SessionUpdateService) setField(ctx context.Context, table *sessionTable, uid string, columnIndex int, value models.CellValue) (int, error) {
	if err := s.checkColumn(table, columnIndex); err != nil {
		return 0, err
	}
	row, found, err := s.locate(ctx, table, uid)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, appErrors.Clone(appErrors.ErrRecordNotFound, fmt.Sprintf("record with uid %q not found", strings.TrimSpace(uid)))
	}
	if err := s.write(ctx, table, row, columnIndex, value); err != nil {
		return 0, err
	}
	s.logger.Info("session field updated", zap.String("uid", uid), zap.Int("row", row), zap.Int("column", columnIndex))
	s.metrics.RecordSessionUpdates(1, 0)
	return row, nil
}

// SetFieldWithDateRecalc behaves like SetField. When the day column is edited the date
// column is cleared for an empty day, or recomputed when period and week are supplied.
// Date resolution failures leave the date untouched and do not fail the edit.
func (s *SessionUpdateService) SetFieldWithDateRecalc(ctx context.Context, uid string, columnIndex int, value models.CellValue, period, week string) error {
	table, err := s.open(ctx)
	if err != nil {
		return err
	}
	row, err := s.setField(ctx, table, uid, columnIndex, value)
	if err != nil {
		return err
	}
	if columnIndex != s.cfg.Columns.Day {
		return nil
	}
	return s.syncDate(ctx, table, &lazyCalendar{loader: s.calendar}, uid, row, value, period, week)
}

// BatchUpdate applies each change to the record with the matching uid. Blank and
// unknown uids are skipped. A store failure stops the batch; earlier writes are kept.
func (s *SessionUpdateService) BatchUpdate(ctx context.Context, changes []models.SessionChange) (*models.BatchUpdateResult, error) {
	table, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	layout := s.cfg.Columns
	calendar := &lazyCalendar{loader: s.calendar}
	result := &models.BatchUpdateResult{Total: len(changes)}
	defer func() {
		s.metrics.RecordSessionUpdates(result.Updated, result.Total-result.Updated)
	}()

	for _, change := range changes {
		row, found, err := s.locate(ctx, table, change.UID)
		if err != nil {
			return nil, err
		}
		if !found {
			s.logger.Warn("batch change skipped: uid not found", zap.String("uid", change.UID))
			continue
		}

		fields := []struct {
			column int
			value  *string
		}{
			{layout.Staff, change.Staff},
			{layout.Room, change.Room},
			{layout.Day, change.Day},
			{layout.Time, change.Time},
			{layout.Period, change.Period},
			{layout.Week, change.Week},
		}
		for _, field := range fields {
			if field.value == nil {
				continue
			}
			if err := s.write(ctx, table, row, field.column, models.CellFromAny(*field.value)); err != nil {
				return nil, err
			}
		}

		if change.Day != nil {
			if err := s.syncDate(ctx, table, calendar, change.UID, row, models.CellFromAny(*change.Day), deref(change.Period), deref(change.Week)); err != nil {
				return nil, err
			}
		}
		result.Updated++
	}

	s.logger.Info("batch update applied", zap.Int("updated", result.Updated), zap.Int("total", result.Total))
	return result, nil
}

// syncDate clears the date cell when the new day cell is empty and otherwise tries to
// recompute it. Only store write failures are returned.
func (s *SessionUpdateService) syncDate(ctx context.Context, table *sessionTable, calendar *lazyCalendar, uid string, row int, dayCell models.CellValue, period, week string) error {
	dateColumn := s.cfg.Columns.Date
	if dayCell.IsEmpty() {
		return s.write(ctx, table, row, dateColumn, models.EmptyCell())
	}
	day := strings.TrimSpace(dayCell.String())
	if strings.TrimSpace(period) == "" || strings.TrimSpace(week) == "" {
		return nil
	}

	entries, err := calendar.load(ctx)
	if err == nil {
		var resolved models.ResolvedDate
		resolved, err = ResolveSessionDate(entries, period, week, day, s.cfg.Location())
		if err == nil {
			return s.write(ctx, table, row, dateColumn, models.TextCell(resolved.Formatted))
		}
	}

	code := appErrors.FromError(err).Code
	s.metrics.RecordDateResolutionFailure(code)
	s.logger.Warn("session date not recalculated",
		zap.String("uid", uid),
		zap.String("period", period),
		zap.String("week", week),
		zap.String("day", day),
		zap.String("code", code),
		zap.Error(err))
	return nil
}

// lazyCalendar loads the academic calendar at most once per operation.
type lazyCalendar struct {
	loader  calendarLoader
	entries []models.CalendarEntry
	err     error
	loaded  bool
}

func (c *lazyCalendar) load(ctx context.Context) ([]models.CalendarEntry, error) {
	if !c.loaded {
		if c.loader == nil {
			c.err = appErrors.Clone(appErrors.ErrConfigMissing, "academic calendar not configured")
		} else {
			c.entries, c.err = c.loader.LoadCalendar(ctx)
		}
		c.loaded = true
	}
	return c.entries, c.err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
