package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/pkg/storage"
)

func newWorkbookRepo(t *testing.T) *WorkbookRepository {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Timetable"))
	require.NoError(t, f.SetCellStr("Timetable", "A1", "Period"))
	require.NoError(t, f.SetCellStr("Timetable", "A2", "P1"))
	require.NoError(t, f.SetCellFloat("Timetable", "B2", 3, -1, 64))
	require.NoError(t, f.SetCellValue("Timetable", "C2", time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellStr("Timetable", "A4", "P2"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), WorkbookKey("book"), buf.Bytes()))

	return NewWorkbookRepository(store, time.UTC)
}

func TestWorkbookRepositoryOpenSheetMissing(t *testing.T) {
	repo := newWorkbookRepo(t)

	_, err := repo.OpenSheet(context.Background(), "book", "Facility")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestWorkbookRepositoryRows(t *testing.T) {
	repo := newWorkbookRepo(t)
	sheet, err := repo.OpenSheet(context.Background(), "book", "Timetable")
	require.NoError(t, err)

	rng, err := models.ParseCellRange("A2:D")
	require.NoError(t, err)
	grid, err := sheet.Rows(context.Background(), rng)
	require.NoError(t, err)

	require.Len(t, grid, 3)
	assert.Equal(t, models.TextCell("P1"), grid[0][0])
	assert.Equal(t, models.NumberCell(3), grid[0][1])
	assert.Equal(t, models.CellDateTime, grid[0][2].Kind)
	assert.Equal(t, "2024-09-02T00:00:00.000Z", grid[0][2].String())
	assert.True(t, grid[0][3].IsEmpty())
	assert.True(t, grid[1][0].IsEmpty())
	assert.Equal(t, models.TextCell("P2"), grid[2][0])
}

func TestWorkbookRepositorySetCellPersists(t *testing.T) {
	repo := newWorkbookRepo(t)
	sheet, err := repo.OpenSheet(context.Background(), "book", "Timetable")
	require.NoError(t, err)

	require.NoError(t, sheet.SetCell(context.Background(), 2, 1, models.TextCell("P9")))
	require.NoError(t, sheet.SetCell(context.Background(), 2, 3, models.EmptyCell()))

	rng, err := models.ParseCellRange("A2:C2")
	require.NoError(t, err)
	grid, err := sheet.Rows(context.Background(), rng)
	require.NoError(t, err)
	require.Len(t, grid, 1)
	assert.Equal(t, models.TextCell("P9"), grid[0][0])
	assert.True(t, grid[0][2].IsEmpty())
}

func TestWorkbookRepositoryDump(t *testing.T) {
	repo := newWorkbookRepo(t)

	names, err := repo.SheetNames(context.Background(), "book")
	require.NoError(t, err)
	assert.Equal(t, []string{"Timetable"}, names)

	grid, err := repo.Dump(context.Background(), "book", "Timetable")
	require.NoError(t, err)
	require.Len(t, grid, 4)
	assert.Equal(t, models.TextCell("Period"), grid[0][0])
	assert.Len(t, grid[0], 3)
}
