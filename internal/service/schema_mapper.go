package service

import (
	"strings"
	"time"

	"github.com/noah-isme/timetable-admin-api/internal/models"
)

const (
	timeOfDayLayout = "15:04:05"
	dateLayout      = "2006-01-02"
)

// SchemaMapper turns raw timetable rows into session records using a fixed column layout.
type SchemaMapper struct {
	layout   models.ColumnLayout
	location *time.Location
}

// NewSchemaMapper builds a mapper. Time-of-day cells are rendered in loc.
func NewSchemaMapper(layout models.ColumnLayout, loc *time.Location) *SchemaMapper {
	if loc == nil {
		loc = time.UTC
	}
	return &SchemaMapper{layout: layout, location: loc}
}

// Layout returns the column layout in use.
func (m *SchemaMapper) Layout() models.ColumnLayout {
	return m.layout
}

// IsPresent reports whether at least one cell of the row holds a value.
func IsPresent(row []models.CellValue) bool {
	for _, cell := range row {
		if !cell.IsEmpty() {
			return true
		}
	}
	return false
}

// Serialize renders every cell of the row for display.
func (m *SchemaMapper) Serialize(row []models.CellValue) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = m.serializeCell(i, cell)
	}
	return out
}

func (m *SchemaMapper) serializeCell(col int, cell models.CellValue) string {
	if col == m.layout.Time && cell.Kind == models.CellDateTime {
		return cell.Time.In(m.location).Format(timeOfDayLayout)
	}
	return cell.String()
}

// Record maps a row onto a session record. rowNumber is the physical 1-based row.
func (m *SchemaMapper) Record(rowNumber int, row []models.CellValue) models.SessionRecord {
	cells := m.Serialize(row)
	field := func(col int) string {
		if col < 0 || col >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[col])
	}

	date := field(m.layout.Date)
	if m.layout.Date >= 0 && m.layout.Date < len(row) && row[m.layout.Date].Kind == models.CellDateTime {
		date = row[m.layout.Date].Time.In(m.location).Format(dateLayout)
	}

	return models.SessionRecord{
		Row:      rowNumber,
		Period:   field(m.layout.Period),
		Week:     field(m.layout.Week),
		Module:   field(m.layout.Module),
		Topic:    field(m.layout.Topic),
		Location: field(m.layout.Location),
		Group:    field(m.layout.Group),
		Hours:    field(m.layout.Hours),
		Staff:    field(m.layout.Staff),
		Room:     field(m.layout.Room),
		Day:      field(m.layout.Day),
		Time:     field(m.layout.Time),
		Date:     date,
		UID:      field(m.layout.UID),
		Cells:    cells,
	}
}
