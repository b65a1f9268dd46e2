package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-admin-api/internal/models"
)

// SheetCellRepository stores tables cell by cell in PostgreSQL.
type SheetCellRepository struct {
	db *sqlx.DB
}

// NewSheetCellRepository builds the repository.
func NewSheetCellRepository(db *sqlx.DB) *SheetCellRepository {
	return &SheetCellRepository{db: db}
}

type sheetCellRow struct {
	RowIndex    int             `db:"row_index"`
	ColIndex    int             `db:"col_index"`
	Kind        string          `db:"kind"`
	TextValue   sql.NullString  `db:"text_value"`
	NumberValue sql.NullFloat64 `db:"number_value"`
	TimeValue   sql.NullTime    `db:"time_value"`
}

func (c sheetCellRow) value() models.CellValue {
	switch models.CellKind(c.Kind) {
	case models.CellText:
		return models.TextCell(c.TextValue.String)
	case models.CellNumber:
		return models.NumberCell(c.NumberValue.Float64)
	case models.CellDateTime:
		return models.DateTimeCell(c.TimeValue.Time)
	default:
		return models.EmptyCell()
	}
}

// OpenSheet returns a handle for an existing table or ErrSheetNotFound.
func (r *SheetCellRepository) OpenSheet(ctx context.Context, spreadsheetID, name string) (Sheet, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM sheets WHERE spreadsheet_id = $1 AND name = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, spreadsheetID, name); err != nil {
		return nil, fmt.Errorf("lookup sheet %s: %w", name, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", name, ErrSheetNotFound)
	}
	return &pgSheet{db: r.db, spreadsheetID: spreadsheetID, name: name}, nil
}

// ReplaceSheet creates the table if needed and swaps its content for rows, which are
// anchored at A1. Used by the workbook import tool.
func (r *SheetCellRepository) ReplaceSheet(ctx context.Context, spreadsheetID, name string, rows [][]models.CellValue) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sheet import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const upsertSheet = `INSERT INTO sheets (spreadsheet_id, name, created_at) VALUES ($1, $2, $3)
ON CONFLICT (spreadsheet_id, name) DO NOTHING`
	if _, err = tx.ExecContext(ctx, upsertSheet, spreadsheetID, name, time.Now().UTC()); err != nil {
		return fmt.Errorf("register sheet %s: %w", name, err)
	}
	const clearCells = `DELETE FROM sheet_cells WHERE spreadsheet_id = $1 AND sheet_name = $2`
	if _, err = tx.ExecContext(ctx, clearCells, spreadsheetID, name); err != nil {
		return fmt.Errorf("clear sheet %s: %w", name, err)
	}

	for i, row := range rows {
		for j, cell := range row {
			if cell.Kind == models.CellEmpty {
				continue
			}
			if err = upsertCell(ctx, tx, spreadsheetID, name, i+1, j+1, cell); err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit sheet import: %w", err)
	}
	return nil
}

type pgSheet struct {
	db            *sqlx.DB
	spreadsheetID string
	name          string
}

func (s *pgSheet) Name() string { return s.name }

// Rows reads the stored cells inside rng. Open-ended ranges stop at the last row
// holding a cell within the range's columns.
func (s *pgSheet) Rows(ctx context.Context, rng models.CellRange) ([][]models.CellValue, error) {
	const query = `SELECT row_index, col_index, kind, text_value, number_value, time_value
FROM sheet_cells
WHERE spreadsheet_id = $1 AND sheet_name = $2
  AND row_index >= $3 AND ($4 = 0 OR row_index <= $4)
  AND col_index BETWEEN $5 AND $6
ORDER BY row_index ASC, col_index ASC`

	var stored []sheetCellRow
	if err := s.db.SelectContext(ctx, &stored, query, s.spreadsheetID, s.name, rng.StartRow, rng.EndRow, rng.StartCol, rng.EndCol); err != nil {
		return nil, fmt.Errorf("read %s!%s: %w", s.name, rng, err)
	}

	cells := make(map[[2]int]models.CellValue, len(stored))
	last := rng.EndRow
	for _, c := range stored {
		cells[[2]int{c.RowIndex, c.ColIndex}] = c.value()
		if !rng.Bounded() && c.RowIndex > last {
			last = c.RowIndex
		}
	}
	return denseGrid(rng, last, cells), nil
}

// SetCell upserts one cell. Writing an empty value removes the stored cell.
func (s *pgSheet) SetCell(ctx context.Context, row, col int, value models.CellValue) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("cell (%d,%d) out of bounds", row, col)
	}
	if value.Kind == models.CellEmpty {
		const query = `DELETE FROM sheet_cells WHERE spreadsheet_id = $1 AND sheet_name = $2 AND row_index = $3 AND col_index = $4`
		if _, err := s.db.ExecContext(ctx, query, s.spreadsheetID, s.name, row, col); err != nil {
			return fmt.Errorf("clear %s (%d,%d): %w", s.name, row, col, err)
		}
		return nil
	}
	return upsertCell(ctx, s.db, s.spreadsheetID, s.name, row, col, value)
}

func upsertCell(ctx context.Context, exec sqlx.ExecerContext, spreadsheetID, name string, row, col int, value models.CellValue) error {
	const query = `INSERT INTO sheet_cells (spreadsheet_id, sheet_name, row_index, col_index, kind, text_value, number_value, time_value, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (spreadsheet_id, sheet_name, row_index, col_index) DO UPDATE
SET kind = EXCLUDED.kind,
    text_value = EXCLUDED.text_value,
    number_value = EXCLUDED.number_value,
    time_value = EXCLUDED.time_value,
    updated_at = EXCLUDED.updated_at`

	var (
		text   sql.NullString
		number sql.NullFloat64
		ts     sql.NullTime
	)
	switch value.Kind {
	case models.CellText:
		text = sql.NullString{String: value.Text, Valid: true}
	case models.CellNumber:
		number = sql.NullFloat64{Float64: value.Number, Valid: true}
	case models.CellDateTime:
		ts = sql.NullTime{Time: value.Time, Valid: true}
	}

	if _, err := exec.ExecContext(ctx, query, spreadsheetID, name, row, col, string(value.Kind), text, number, ts, time.Now().UTC()); err != nil {
		return fmt.Errorf("write %s (%d,%d): %w", name, row, col, err)
	}
	return nil
}
