package repository

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/timetable-admin-api/internal/models"
)

type blobStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// WorkbookRepository serves tables from an XLSX workbook kept in a blob store. The
// workbook is loaded on every call so each read sees the latest saved state.
type WorkbookRepository struct {
	store    blobStore
	location *time.Location
	mu       sync.Mutex
}

// NewWorkbookRepository builds the repository. Date cells are interpreted as wall
// clock times in loc.
func NewWorkbookRepository(store blobStore, loc *time.Location) *WorkbookRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &WorkbookRepository{store: store, location: loc}
}

// WorkbookKey is the blob key holding a spreadsheet.
func WorkbookKey(spreadsheetID string) string {
	return spreadsheetID + ".xlsx"
}

func (r *WorkbookRepository) load(ctx context.Context, spreadsheetID string) (*excelize.File, error) {
	data, err := r.store.Read(ctx, WorkbookKey(spreadsheetID))
	if err != nil {
		return nil, fmt.Errorf("load workbook %s: %w", spreadsheetID, err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse workbook %s: %w", spreadsheetID, err)
	}
	return f, nil
}

// OpenSheet returns a handle for an existing sheet or ErrSheetNotFound.
func (r *WorkbookRepository) OpenSheet(ctx context.Context, spreadsheetID, name string) (Sheet, error) {
	f, err := r.load(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrSheetNotFound)
	}
	return &workbookSheet{repo: r, spreadsheetID: spreadsheetID, name: name}, nil
}

// SheetNames lists the sheets of a workbook in tab order.
func (r *WorkbookRepository) SheetNames(ctx context.Context, spreadsheetID string) ([]string, error) {
	f, err := r.load(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// Dump returns every used cell of a sheet anchored at A1.
func (r *WorkbookRepository) Dump(ctx context.Context, spreadsheetID, name string) ([][]models.CellValue, error) {
	f, err := r.load(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, ErrSheetNotFound)
	}
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return [][]models.CellValue{}, nil
	}
	return r.readGrid(f, name, models.CellRange{StartRow: 1, StartCol: 1, EndRow: len(rows), EndCol: width})
}

func (r *WorkbookRepository) readGrid(f *excelize.File, sheet string, rng models.CellRange) ([][]models.CellValue, error) {
	last := rng.EndRow
	if !rng.Bounded() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", sheet, err)
		}
		last = len(rows)
	}

	cells := make(map[[2]int]models.CellValue)
	for row := rng.StartRow; row <= last; row++ {
		for col := rng.StartCol; col <= rng.EndCol; col++ {
			value, err := r.readCell(f, sheet, col, row)
			if err != nil {
				return nil, err
			}
			if value.Kind != models.CellEmpty {
				cells[[2]int{row, col}] = value
			}
		}
	}
	return denseGrid(rng, last, cells), nil
}

func (r *WorkbookRepository) readCell(f *excelize.File, sheet string, col, row int) (models.CellValue, error) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return models.EmptyCell(), err
	}
	raw, err := f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return models.EmptyCell(), fmt.Errorf("read %s!%s: %w", sheet, ref, err)
	}
	if raw == "" {
		return models.EmptyCell(), nil
	}
	kind, err := f.GetCellType(sheet, ref)
	if err != nil {
		return models.EmptyCell(), fmt.Errorf("read %s!%s type: %w", sheet, ref, err)
	}

	switch kind {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return models.TextCell(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" {
			return models.TextCell("TRUE"), nil
		}
		return models.TextCell("FALSE"), nil
	case excelize.CellTypeDate:
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", strings.TrimSuffix(raw, "Z"), r.location); err == nil {
			return models.DateTimeCell(t), nil
		}
		return models.TextCell(raw), nil
	}

	number, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.TextCell(raw), nil
	}
	if r.isDateFormatted(f, sheet, ref) {
		if t, err := excelize.ExcelDateToTime(number, false); err == nil {
			return models.DateTimeCell(time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), r.location)), nil
		}
	}
	return models.NumberCell(number), nil
}

var quotedFormatText = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]`)

func (r *WorkbookRepository) isDateFormatted(f *excelize.File, sheet, ref string) bool {
	styleID, err := f.GetCellStyle(sheet, ref)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		format := strings.ToLower(quotedFormatText.ReplaceAllString(*style.CustomNumFmt, ""))
		return strings.ContainsAny(format, "ydhs")
	}
	return isBuiltInDateFormat(style.NumFmt)
}

func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

func (r *WorkbookRepository) setCell(ctx context.Context, spreadsheetID, sheet string, row, col int, value models.CellValue) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell (%d,%d) out of bounds: %w", row, col, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.load(ctx, spreadsheetID)
	if err != nil {
		return err
	}
	defer f.Close()

	switch value.Kind {
	case models.CellText:
		err = f.SetCellStr(sheet, ref, value.Text)
	case models.CellNumber:
		err = f.SetCellFloat(sheet, ref, value.Number, -1, 64)
	case models.CellDateTime:
		wall := value.Time.In(r.location)
		err = f.SetCellValue(sheet, ref, time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), time.UTC))
	default:
		err = f.SetCellValue(sheet, ref, nil)
	}
	if err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, ref, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("serialize workbook %s: %w", spreadsheetID, err)
	}
	if err := r.store.Write(ctx, WorkbookKey(spreadsheetID), buf.Bytes()); err != nil {
		return fmt.Errorf("save workbook %s: %w", spreadsheetID, err)
	}
	return nil
}

type workbookSheet struct {
	repo          *WorkbookRepository
	spreadsheetID string
	name          string
}

func (s *workbookSheet) Name() string { return s.name }

func (s *workbookSheet) Rows(ctx context.Context, rng models.CellRange) ([][]models.CellValue, error) {
	f, err := s.repo.load(ctx, s.spreadsheetID)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.repo.readGrid(f, s.name, rng)
}

func (s *workbookSheet) SetCell(ctx context.Context, row, col int, value models.CellValue) error {
	return s.repo.setCell(ctx, s.spreadsheetID, s.name, row, col, value)
}
