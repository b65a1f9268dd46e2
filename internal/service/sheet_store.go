package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type sheetStore interface {
	OpenSheet(ctx context.Context, spreadsheetID, name string) (repository.Sheet, error)
}

// InstrumentedStore times every row store call through the metrics service.
type InstrumentedStore struct {
	inner   sheetStore
	metrics *MetricsService
}

// NewInstrumentedStore wraps store. A nil metrics service makes it a pass-through.
func NewInstrumentedStore(store sheetStore, metrics *MetricsService) *InstrumentedStore {
	return &InstrumentedStore{inner: store, metrics: metrics}
}

// OpenSheet opens the named table and instruments the returned handle.
func (s *InstrumentedStore) OpenSheet(ctx context.Context, spreadsheetID, name string) (repository.Sheet, error) {
	start := time.Now()
	sheet, err := s.inner.OpenSheet(ctx, spreadsheetID, name)
	s.metrics.ObserveStoreCall("open_sheet", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &instrumentedSheet{Sheet: sheet, metrics: s.metrics}, nil
}

type instrumentedSheet struct {
	repository.Sheet
	metrics *MetricsService
}

func (s *instrumentedSheet) Rows(ctx context.Context, rng models.CellRange) ([][]models.CellValue, error) {
	start := time.Now()
	rows, err := s.Sheet.Rows(ctx, rng)
	s.metrics.ObserveStoreCall("get_rows", err, time.Since(start))
	return rows, err
}

func (s *instrumentedSheet) SetCell(ctx context.Context, row, col int, value models.CellValue) error {
	start := time.Now()
	err := s.Sheet.SetCell(ctx, row, col, value)
	s.metrics.ObserveStoreCall("set_cell", err, time.Since(start))
	return err
}

// openTable opens a sheet and maps store failures onto the error taxonomy.
func openTable(ctx context.Context, store sheetStore, spreadsheetID, name string) (repository.Sheet, error) {
	sheet, err := store.OpenSheet(ctx, spreadsheetID, name)
	if err != nil {
		if errors.Is(err, repository.ErrSheetNotFound) {
			return nil, appErrors.Clone(appErrors.ErrTableNotFound, fmt.Sprintf("sheet %q not found", name))
		}
		return nil, appErrors.Backend(err, fmt.Sprintf("failed to open sheet %q", name))
	}
	return sheet, nil
}

// readTable opens a sheet and reads the given A1 range from it.
func readTable(ctx context.Context, store sheetStore, spreadsheetID, name, rawRange string) ([][]models.CellValue, models.CellRange, error) {
	rng, err := models.ParseCellRange(rawRange)
	if err != nil {
		return nil, models.CellRange{}, appErrors.Wrap(err, appErrors.ErrConfigMissing.Code, appErrors.ErrConfigMissing.Status, fmt.Sprintf("invalid range %q for sheet %q", rawRange, name))
	}
	sheet, err := openTable(ctx, store, spreadsheetID, name)
	if err != nil {
		return nil, rng, err
	}
	rows, err := sheet.Rows(ctx, rng)
	if err != nil {
		return nil, rng, appErrors.Backend(err, fmt.Sprintf("failed to read sheet %q", name))
	}
	return rows, rng, nil
}
