package models

import (
	"strconv"
	"strings"
	"time"
)

// CellKind tags the variant held by a CellValue.
type CellKind string

const (
	CellEmpty    CellKind = "EMPTY"
	CellText     CellKind = "TEXT"
	CellNumber   CellKind = "NUMBER"
	CellDateTime CellKind = "DATETIME"
)

// ISOInstantLayout matches the millisecond UTC form used for date cells.
const ISOInstantLayout = "2006-01-02T15:04:05.000Z"

// CellValue is one raw cell read from or written to the row store.
type CellValue struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// EmptyCell returns the blank cell.
func EmptyCell() CellValue { return CellValue{Kind: CellEmpty} }

// TextCell wraps a string. The empty string stays a text cell but counts as empty.
func TextCell(s string) CellValue { return CellValue{Kind: CellText, Text: s} }

// NumberCell wraps a numeric value.
func NumberCell(f float64) CellValue { return CellValue{Kind: CellNumber, Number: f} }

// DateTimeCell wraps an instant.
func DateTimeCell(t time.Time) CellValue { return CellValue{Kind: CellDateTime, Time: t} }

// CellFromAny converts a decoded JSON value into a cell.
func CellFromAny(v interface{}) CellValue {
	switch val := v.(type) {
	case nil:
		return EmptyCell()
	case string:
		if val == "" {
			return EmptyCell()
		}
		return TextCell(val)
	case float64:
		return NumberCell(val)
	case float32:
		return NumberCell(float64(val))
	case int:
		return NumberCell(float64(val))
	case int64:
		return NumberCell(float64(val))
	case bool:
		return TextCell(strings.ToUpper(strconv.FormatBool(val)))
	case time.Time:
		return DateTimeCell(val)
	case CellValue:
		return val
	default:
		return EmptyCell()
	}
}

// IsEmpty reports whether the cell holds nothing or an empty string.
func (c CellValue) IsEmpty() bool {
	switch c.Kind {
	case CellText:
		return c.Text == ""
	case CellNumber, CellDateTime:
		return false
	default:
		return true
	}
}

// String renders the cell the way it is shown to clients. Date cells become ISO-8601
// instants in UTC.
func (c CellValue) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDateTime:
		return c.Time.UTC().Format(ISOInstantLayout)
	default:
		return ""
	}
}

// Value returns the cell as a plain Go value suitable for a backend write.
func (c CellValue) Value() interface{} {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return c.Number
	case CellDateTime:
		return c.Time
	default:
		return nil
	}
}
