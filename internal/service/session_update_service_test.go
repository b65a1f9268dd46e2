package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type stubCalendarLoader struct {
	entries []models.CalendarEntry
	err     error
	calls   int
}

func (s *stubCalendarLoader) LoadCalendar(context.Context) ([]models.CalendarEntry, error) {
	s.calls++
	return s.entries, s.err
}

func newUpdateFixture(sessions ...session) (*SessionUpdateService, *fakeSheet, *stubCalendarLoader, *MetricsService) {
	store := newFakeStore()
	sheet := store.add("Timetable", timetableGrid(sessions...))
	calendar := &stubCalendarLoader{entries: testCalendar()}
	metrics := NewMetricsService()
	svc := NewSessionUpdateService(store, calendar, testSheetConfig(), metrics, nil)
	return svc, sheet, calendar, metrics
}

func strPtr(s string) *string { return &s }

func TestSessionUpdateServiceSetField(t *testing.T) {
	svc, sheet, _, _ := newUpdateFixture(
		session{uid: "a"},
		session{uid: " b "},
	)

	require.NoError(t, svc.SetField(context.Background(), "b", 11, models.TextCell("Dr Smith")))
	require.Len(t, sheet.writes, 1)
	assert.Equal(t, cellWrite{row: 3, col: 12, value: models.TextCell("Dr Smith")}, sheet.writes[0])
}

func TestSessionUpdateServiceSetFieldUnknownUID(t *testing.T) {
	svc, sheet, _, _ := newUpdateFixture(session{uid: "a"})

	err := svc.SetField(context.Background(), "zzz", 11, models.TextCell("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrRecordNotFound))
	assert.Empty(t, sheet.writes)
}

func TestSessionUpdateServiceSetFieldColumnOutOfRange(t *testing.T) {
	svc, sheet, _, _ := newUpdateFixture(session{uid: "a"})

	err := svc.SetField(context.Background(), "a", 17, models.TextCell("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, sheet.writes)
}

func TestSessionUpdateServiceSetFieldBackendError(t *testing.T) {
	svc, sheet, _, _ := newUpdateFixture(session{uid: "a"})
	sheet.store.writeErr = errors.New("quota exceeded")

	err := svc.SetField(context.Background(), "a", 11, models.TextCell("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrBackend))
}

func TestSessionUpdateServiceDayRecalculatesDate(t *testing.T) {
	svc, sheet, _, _ := newUpdateFixture(session{uid: "a", period: "TP1", week: "1"})

	require.NoError(t, svc.SetFieldWithDateRecalc(context.Background(), "a", 13, models.TextCell("Friday"), "TP1", "1"))
	require.Len(t, sheet.writes, 2)
	assert.Equal(t, cellWrite{row: 2, col: 14, value: models.TextCell("Friday")}, sheet.writes[0])
	assert.Equal(t, cellWrite{row: 2, col: 16, value: models.TextCell("2024-09-06")}, sheet.writes[1])
}

func TestSessionUpdateServiceClearingDayClearsDate(t *testing.T) {
	svc, sheet, calendar, _ := newUpdateFixture(session{uid: "a", day: "Monday", date: "2024-09-09"})

	require.NoError(t, svc.SetFieldWithDateRecalc(context.Background(), "a", 13, models.EmptyCell(), "", ""))
	require.Len(t, sheet.writes, 2)
	assert.True(t, sheet.writes[1].value.IsEmpty())
	assert.Equal(t, 16, sheet.writes[1].col)
	assert.Zero(t, calendar.calls)

	require.NoError(t, svc.SetFieldWithDateRecalc(context.Background(), "a", 13, models.TextCell(""), "TP1", "2"))
	assert.True(t, sheet.writes[3].value.IsEmpty())
	assert.Equal(t, 16, sheet.writes[3].col)
}

func TestSessionUpdateServiceResolverFailureIsSwallowed(t *testing.T) {
	svc, sheet, _, metrics := newUpdateFixture(session{uid: "a", date: "2024-09-09"})

	require.NoError(t, svc.SetFieldWithDateRecalc(context.Background(), "a", 13, models.TextCell("Friday"), "TP9", "1"))
	require.Len(t, sheet.writes, 1)
	assert.Equal(t, uint64(1), metrics.Snapshot().DateResolutionFailures)
}

func TestSessionUpdateServiceNonDayColumnSkipsDate(t *testing.T) {
	svc, sheet, calendar, _ := newUpdateFixture(session{uid: "a"})

	require.NoError(t, svc.SetFieldWithDateRecalc(context.Background(), "a", 12, models.TextCell("Room 4"), "TP1", "1"))
	assert.Len(t, sheet.writes, 1)
	assert.Zero(t, calendar.calls)
}

func TestSessionUpdateServiceBatchUpdate(t *testing.T) {
	svc, sheet, calendar, metrics := newUpdateFixture(
		session{uid: "a"},
		session{uid: "b"},
		session{uid: "c"},
	)

	result, err := svc.BatchUpdate(context.Background(), []models.SessionChange{
		{UID: "a", Staff: strPtr("Dr Smith"), Room: strPtr("R1")},
		{UID: "missing", Staff: strPtr("nobody")},
		{UID: "c", Day: strPtr("Monday"), Period: strPtr("TP1"), Week: strPtr("2")},
	})
	require.NoError(t, err)
	assert.Equal(t, &models.BatchUpdateResult{Updated: 2, Total: 3}, result)

	assert.Equal(t, []cellWrite{
		{row: 2, col: 12, value: models.TextCell("Dr Smith")},
		{row: 2, col: 13, value: models.TextCell("R1")},
		{row: 4, col: 14, value: models.TextCell("Monday")},
		{row: 4, col: 1, value: models.TextCell("TP1")},
		{row: 4, col: 2, value: models.TextCell("2")},
		{row: 4, col: 16, value: models.TextCell("2024-09-16")},
	}, sheet.writes)
	assert.Equal(t, 1, calendar.calls)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.SessionsUpdated)
	assert.Equal(t, uint64(1), snapshot.SessionsSkipped)
}

func TestSessionUpdateServiceBatchDayWithoutWeekKeepsDate(t *testing.T) {
	svc, sheet, calendar, _ := newUpdateFixture(session{uid: "a", date: "2024-09-09"})

	result, err := svc.BatchUpdate(context.Background(), []models.SessionChange{
		{UID: "a", Day: strPtr("Tuesday"), Period: strPtr("TP1")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Len(t, sheet.writes, 2)
	assert.Zero(t, calendar.calls)
}

func TestSessionUpdateServiceBatchSkipsBlankUID(t *testing.T) {
	svc, sheet, _, _ := newUpdateFixture(session{uid: "a"}, session{uid: "b"})

	result, err := svc.BatchUpdate(context.Background(), []models.SessionChange{
		{UID: "a", Staff: strPtr("x")},
		{UID: "", Staff: strPtr("y")},
		{UID: "b", Staff: strPtr("z")},
	})
	require.NoError(t, err)
	assert.Equal(t, &models.BatchUpdateResult{Updated: 2, Total: 3}, result)
	assert.Equal(t, []cellWrite{
		{row: 2, col: 12, value: models.TextCell("x")},
		{row: 3, col: 12, value: models.TextCell("z")},
	}, sheet.writes)
}

func TestSessionUpdateServiceBatchEmptyDayClearsDate(t *testing.T) {
	svc, sheet, calendar, _ := newUpdateFixture(session{uid: "a", day: "Monday", date: "2024-09-09"})

	result, err := svc.BatchUpdate(context.Background(), []models.SessionChange{
		{UID: "a", Day: strPtr("")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, sheet.writes, 2)
	assert.Equal(t, 14, sheet.writes[0].col)
	assert.True(t, sheet.writes[0].value.IsEmpty())
	assert.Equal(t, 16, sheet.writes[1].col)
	assert.True(t, sheet.writes[1].value.IsEmpty())
	assert.Zero(t, calendar.calls)
}

func TestSessionUpdateServiceBlankDayKeepsDate(t *testing.T) {
	svc, sheet, _, metrics := newUpdateFixture(session{uid: "a", day: "Monday", date: "2024-09-09"})

	require.NoError(t, svc.SetFieldWithDateRecalc(context.Background(), "a", 13, models.TextCell(" "), "TP1", "1"))
	require.Len(t, sheet.writes, 1)
	assert.Equal(t, models.TextCell(" "), sheet.writes[0].value)
	assert.Equal(t, uint64(1), metrics.Snapshot().DateResolutionFailures)

	result, err := svc.BatchUpdate(context.Background(), []models.SessionChange{
		{UID: "a", Day: strPtr("  ")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Len(t, sheet.writes, 2)
}

func TestSessionUpdateServiceBatchStopsOnWriteFailure(t *testing.T) {
	svc, sheet, _, _ := newUpdateFixture(session{uid: "a"}, session{uid: "b"})
	sheet.store.writeErr = errors.New("backend down")

	_, err := svc.BatchUpdate(context.Background(), []models.SessionChange{
		{UID: "a", Staff: strPtr("x")},
		{UID: "b", Staff: strPtr("y")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrBackend))
}

func TestSessionUpdateServiceUsesSheetZoneForDates(t *testing.T) {
	store := newFakeStore()
	sheet := store.add("Timetable", timetableGrid(session{uid: "a"}))
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)
	cfg := testSheetConfig()
	cfg.TimeZone = "Australia/Sydney"
	calendar := &stubCalendarLoader{entries: []models.CalendarEntry{
		{Period: "TP1", StartDate: time.Date(2024, 9, 2, 0, 0, 0, 0, loc)},
	}}
	svc := NewSessionUpdateService(store, calendar, cfg, nil, nil)

	require.NoError(t, svc.SetFieldWithDateRecalc(context.Background(), "a", 13, models.TextCell("Monday"), "TP1", "1"))
	assert.Equal(t, models.TextCell("2024-09-02"), sheet.writes[1].value)
}
