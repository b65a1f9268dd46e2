package repository

import (
	"context"
	"errors"

	"github.com/noah-isme/timetable-admin-api/internal/models"
)

// ErrSheetNotFound is returned by OpenSheet when the named table does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Sheet is a handle on one named table of a data source.
type Sheet interface {
	Name() string
	// Rows returns a dense grid for rng. Every row has rng.Width() cells; missing
	// cells are empty.
	Rows(ctx context.Context, rng models.CellRange) ([][]models.CellValue, error)
	// SetCell writes one value at a 1-based row and column.
	SetCell(ctx context.Context, row, col int, value models.CellValue) error
}

// denseGrid lays sparse cells out into a grid covering rows first..last of rng.
func denseGrid(rng models.CellRange, last int, cells map[[2]int]models.CellValue) [][]models.CellValue {
	if last < rng.StartRow {
		return [][]models.CellValue{}
	}
	width := rng.Width()
	grid := make([][]models.CellValue, 0, last-rng.StartRow+1)
	for row := rng.StartRow; row <= last; row++ {
		line := make([]models.CellValue, width)
		for i := range line {
			if value, ok := cells[[2]int{row, rng.StartCol + i}]; ok {
				line[i] = value
			} else {
				line[i] = models.EmptyCell()
			}
		}
		grid = append(grid, line)
	}
	return grid
}
