package models

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellRange is a parsed A1 selector such as "A2:Q". Rows and columns are 1-based;
// EndRow 0 means the range runs to the last row holding data.
type CellRange struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// ParseCellRange parses "A2:Q", "A2:B10", "B3" or "C:C" style selectors.
func ParseCellRange(raw string) (CellRange, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return CellRange{}, fmt.Errorf("empty range")
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 2 {
		return CellRange{}, fmt.Errorf("invalid range %q", raw)
	}

	startCol, startRow, err := parseRangeEdge(parts[0])
	if err != nil {
		return CellRange{}, fmt.Errorf("invalid range %q: %w", raw, err)
	}
	if startRow == 0 {
		startRow = 1
	}
	rng := CellRange{StartRow: startRow, StartCol: startCol, EndRow: startRow, EndCol: startCol}
	if len(parts) == 2 {
		endCol, endRow, err := parseRangeEdge(parts[1])
		if err != nil {
			return CellRange{}, fmt.Errorf("invalid range %q: %w", raw, err)
		}
		rng.EndCol = endCol
		rng.EndRow = endRow
	}
	if rng.EndCol < rng.StartCol {
		return CellRange{}, fmt.Errorf("invalid range %q: end column before start column", raw)
	}
	if rng.EndRow != 0 && rng.EndRow < rng.StartRow {
		return CellRange{}, fmt.Errorf("invalid range %q: end row before start row", raw)
	}
	return rng, nil
}

func parseRangeEdge(edge string) (col int, row int, err error) {
	if edge == "" {
		return 0, 0, fmt.Errorf("missing cell reference")
	}
	if strings.IndexAny(edge, "0123456789") < 0 {
		col, err = excelize.ColumnNameToNumber(edge)
		return col, 0, err
	}
	return excelize.CellNameToCoordinates(edge)
}

// Width is the number of columns covered by the range.
func (r CellRange) Width() int {
	return r.EndCol - r.StartCol + 1
}

// Bounded reports whether the range has an explicit last row.
func (r CellRange) Bounded() bool {
	return r.EndRow > 0
}

// Column narrows the range to a single 0-based column offset, keeping its rows.
func (r CellRange) Column(offset int) CellRange {
	col := r.StartCol + offset
	return CellRange{StartRow: r.StartRow, StartCol: col, EndRow: r.EndRow, EndCol: col}
}

// String renders the range back to A1 notation.
func (r CellRange) String() string {
	start, _ := excelize.CoordinatesToCellName(r.StartCol, r.StartRow)
	endCol, _ := excelize.ColumnNumberToName(r.EndCol)
	if r.Bounded() {
		return fmt.Sprintf("%s:%s%d", start, endCol, r.EndRow)
	}
	return fmt.Sprintf("%s:%s", start, endCol)
}
