package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/internal/repository"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
)

type cellWrite struct {
	row   int
	col   int
	value models.CellValue
}

// fakeStore keeps sheets as grids anchored at A1.
type fakeStore struct {
	sheets   map[string]*fakeSheet
	openErr  error
	readErr  error
	writeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{sheets: map[string]*fakeSheet{}}
}

func (s *fakeStore) add(name string, rows [][]models.CellValue) *fakeSheet {
	sheet := &fakeSheet{store: s, name: name, grid: rows}
	s.sheets[name] = sheet
	return sheet
}

func (s *fakeStore) OpenSheet(_ context.Context, _ string, name string) (repository.Sheet, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	sheet, ok := s.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, repository.ErrSheetNotFound)
	}
	return sheet, nil
}

type fakeSheet struct {
	store  *fakeStore
	name   string
	grid   [][]models.CellValue
	writes []cellWrite
}

func (s *fakeSheet) Name() string { return s.name }

func (s *fakeSheet) Rows(_ context.Context, rng models.CellRange) ([][]models.CellValue, error) {
	if s.store.readErr != nil {
		return nil, s.store.readErr
	}
	last := rng.EndRow
	if !rng.Bounded() {
		last = len(s.grid)
	}
	out := make([][]models.CellValue, 0)
	for row := rng.StartRow; row <= last; row++ {
		line := make([]models.CellValue, rng.Width())
		for i := range line {
			line[i] = s.cell(row, rng.StartCol+i)
		}
		out = append(out, line)
	}
	return out, nil
}

func (s *fakeSheet) SetCell(_ context.Context, row, col int, value models.CellValue) error {
	if s.store.writeErr != nil {
		return s.store.writeErr
	}
	s.writes = append(s.writes, cellWrite{row: row, col: col, value: value})
	for len(s.grid) < row {
		s.grid = append(s.grid, nil)
	}
	for len(s.grid[row-1]) < col {
		s.grid[row-1] = append(s.grid[row-1], models.EmptyCell())
	}
	s.grid[row-1][col-1] = value
	return nil
}

func (s *fakeSheet) cell(row, col int) models.CellValue {
	if row < 1 || row > len(s.grid) || col < 1 || col > len(s.grid[row-1]) {
		return models.EmptyCell()
	}
	return s.grid[row-1][col-1]
}

// session describes a timetable row by field name.
type session struct {
	period, week, module, topic, location, group, hours, staff, room, day, time, date, uid string
}

func (s session) row() []models.CellValue {
	layout := models.DefaultColumnLayout()
	row := make([]models.CellValue, 17)
	for i := range row {
		row[i] = models.EmptyCell()
	}
	set := func(col int, v string) {
		if v != "" {
			row[col] = models.TextCell(v)
		}
	}
	set(layout.Period, s.period)
	set(layout.Week, s.week)
	set(layout.Module, s.module)
	set(layout.Topic, s.topic)
	set(layout.Location, s.location)
	set(layout.Group, s.group)
	set(layout.Hours, s.hours)
	set(layout.Staff, s.staff)
	set(layout.Room, s.room)
	set(layout.Day, s.day)
	set(layout.Time, s.time)
	set(layout.Date, s.date)
	set(layout.UID, s.uid)
	return row
}

func headerRow() []models.CellValue {
	return []models.CellValue{models.TextCell("Period"), models.TextCell("Week")}
}

// timetableGrid puts a header in row 1 and the sessions from row 2.
func timetableGrid(sessions ...session) [][]models.CellValue {
	grid := [][]models.CellValue{headerRow()}
	for _, s := range sessions {
		grid = append(grid, s.row())
	}
	return grid
}

func testSheetConfig() config.SheetConfig {
	return config.SheetConfig{
		SpreadsheetID:  "book",
		TimetableSheet: "Timetable",
		DataRange:      "A2:Q",
		CalendarSheet:  "Academic Calendar",
		CalendarRange:  "A2:B",
		StaffSheet:     "HR",
		StaffRange:     "A2:A",
		RoomSheet:      "Facility",
		RoomRange:      "A2:A",
		TimeZone:       "UTC",
		Columns:        models.DefaultColumnLayout(),
	}
}
