package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-admin-api/internal/models"
)

func TestIsPresent(t *testing.T) {
	assert.False(t, IsPresent(nil))
	assert.False(t, IsPresent([]models.CellValue{models.EmptyCell(), models.TextCell("")}))
	assert.True(t, IsPresent([]models.CellValue{models.EmptyCell(), models.NumberCell(0)}))
}

func TestSchemaMapperRecord(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	mapper := NewSchemaMapper(models.DefaultColumnLayout(), loc)

	row := session{period: " TP1 ", week: "2", module: "CS101", group: "G3", uid: " u-1 "}.row()
	row[8] = models.NumberCell(1.5)
	row[14] = models.DateTimeCell(time.Date(1899, 12, 30, 8, 30, 0, 0, time.UTC))
	row[15] = models.DateTimeCell(time.Date(2024, 9, 2, 23, 0, 0, 0, time.UTC))

	record := mapper.Record(7, row)

	assert.Equal(t, 7, record.Row)
	assert.Equal(t, "TP1", record.Period)
	assert.Equal(t, "u-1", record.UID)
	assert.Equal(t, "1.5", record.Hours)
	assert.Equal(t, "09:30:00", record.Time)
	assert.Equal(t, "2024-09-03", record.Date)
	assert.Equal(t, " TP1 ", record.Cells[0])
	assert.Equal(t, "2024-09-02T23:00:00.000Z", record.Cells[15])
	assert.Len(t, record.Cells, 17)
}

func TestSchemaMapperShortRow(t *testing.T) {
	mapper := NewSchemaMapper(models.DefaultColumnLayout(), nil)
	record := mapper.Record(2, []models.CellValue{models.TextCell("TP1")})

	assert.Equal(t, "TP1", record.Period)
	assert.Empty(t, record.UID)
	assert.Empty(t, record.Date)
}
