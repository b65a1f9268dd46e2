package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type stubModuleSource struct {
	data *models.ModuleData
	err  error
}

func (s stubModuleSource) GetModuleData(_ context.Context, module, period string) (*models.ModuleData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func exportFixture() *models.ModuleData {
	sessions := []models.SessionRecord{
		{Period: "TP1", Week: "1", Module: "CS101", Topic: "Intro", Group: "Group 1", Hours: "2", Staff: "Dr Smith", Room: "Lab 1", Day: "Monday", Time: "09:00:00", Date: "2024-09-09", UID: "u1"},
		{Period: "TP1", Week: "2", Module: "CS101", Topic: "Loops", Location: "Online", Group: "Group 1", Day: "Monday"},
	}
	return GroupSessions("CS101", "TP1", sessions)
}

func TestExportServiceCSV(t *testing.T) {
	svc := NewExportService(stubModuleSource{data: exportFixture()}, time.UTC, nil)

	file, err := svc.ExportModule(context.Background(), "CS101", "TP1", "")
	require.NoError(t, err)
	assert.Equal(t, "CS101_TP1.csv", file.FileName)
	assert.Equal(t, 2, file.Sessions)
	assert.Contains(t, file.ContentType, "text/csv")

	records, err := csv.NewReader(bytes.NewReader(file.Content)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Contains(t, strings.Join(records[0], ","), "Staff")
	assert.Contains(t, string(file.Content), "Dr Smith")
}

func TestExportServiceXLSXAndPDF(t *testing.T) {
	svc := NewExportService(stubModuleSource{data: exportFixture()}, time.UTC, nil)

	xlsx, err := svc.ExportModule(context.Background(), "CS101", "TP1", "XLSX")
	require.NoError(t, err)
	assert.Equal(t, "CS101_TP1.xlsx", xlsx.FileName)
	assert.True(t, bytes.HasPrefix(xlsx.Content, []byte("PK")))

	pdf, err := svc.ExportModule(context.Background(), "CS101", "TP1", "pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf.Content, []byte("%PDF")))
}

func TestExportServiceICSIncludesDatedSessionsOnly(t *testing.T) {
	svc := NewExportService(stubModuleSource{data: exportFixture()}, time.UTC, nil)

	file, err := svc.ExportModule(context.Background(), "CS101", "TP1", "ics")
	require.NoError(t, err)
	body := string(file.Content)
	assert.Equal(t, 1, strings.Count(body, "BEGIN:VEVENT"))
	assert.Contains(t, body, "UID:u1")
	assert.Contains(t, body, "DTSTART:20240909T090000Z")
	assert.Contains(t, body, "DTEND:20240909T110000Z")
	assert.Contains(t, body, "SUMMARY:CS101: Intro")
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(stubModuleSource{data: exportFixture()}, time.UTC, nil)

	_, err := svc.ExportModule(context.Background(), "CS101", "TP1", "docx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestExportServicePropagatesSourceErrors(t *testing.T) {
	svc := NewExportService(stubModuleSource{err: appErrors.Clone(appErrors.ErrTableNotFound, "missing")}, time.UTC, nil)

	_, err := svc.ExportModule(context.Background(), "CS101", "TP1", "csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrTableNotFound))
}

func TestSessionStartAndDuration(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	start, ok := sessionStart(models.SessionRecord{Date: "2024-09-09", Time: "14:30"}, loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 9, 9, 14, 30, 0, 0, loc), start)

	_, ok = sessionStart(models.SessionRecord{Date: "not a date"}, loc)
	assert.False(t, ok)

	assert.Equal(t, 90*time.Minute, sessionDuration("1.5"))
	assert.Equal(t, time.Hour, sessionDuration(""))
	assert.Equal(t, "Web_Dev-1_TP1", sanitizeFilename(" Web Dev/1_TP1 "))
}
