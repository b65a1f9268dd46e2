package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/pkg/export"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

// Export formats.
const (
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatXLSX = "xlsx"
	ExportFormatICS  = "ics"
)

var exportHeaders = []string{"Period", "Week", "Day", "Date", "Time", "Topic", "Location", "Group", "Hours", "Staff", "Room", "UID"}

type moduleDataSource interface {
	GetModuleData(ctx context.Context, module, period string) (*models.ModuleData, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

type calendarRenderer interface {
	Render(name string, events []export.Event) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
	Sessions    int
}

// ExportService renders the grouped view of a module for download.
type ExportService struct {
	source   moduleDataSource
	tables   map[string]tableRenderer
	calendar calendarRenderer
	location *time.Location
	logger   *zap.Logger
}

// NewExportService constructs the service with the CSV, PDF, XLSX and ICS renderers.
func NewExportService(source moduleDataSource, loc *time.Location, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{
		source: source,
		tables: map[string]tableRenderer{
			ExportFormatCSV:  export.NewCSVExporter(),
			ExportFormatPDF:  export.NewPDFExporter(),
			ExportFormatXLSX: export.NewXLSXExporter(),
		},
		calendar: export.NewICSExporter(""),
		location: loc,
		logger:   logger,
	}
}

// ExportModule renders the sessions of module in period in the requested format.
func (s *ExportService) ExportModule(ctx context.Context, module, period, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	table, isTable := s.tables[format]
	if !isTable && format != ExportFormatICS {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	data, err := s.source.GetModuleData(ctx, module, period)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s - %s", data.Module, data.Period)
	base := sanitizeFilename(fmt.Sprintf("%s_%s", data.Module, data.Period))

	var (
		content     []byte
		contentType string
		extension   string
	)
	if isTable {
		content, err = table.Render(buildModuleDataset(title, data))
		contentType, extension = table.ContentType(), table.Extension()
	} else {
		content, err = s.calendar.Render(title, s.buildEvents(data))
		contentType, extension = s.calendar.ContentType(), s.calendar.Extension()
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("module exported",
		zap.String("module", data.Module),
		zap.String("period", data.Period),
		zap.String("format", format),
		zap.Int("sessions", len(data.Sessions)))

	return &ExportFile{
		FileName:    fmt.Sprintf("%s.%s", base, extension),
		ContentType: contentType,
		Content:     content,
		Sessions:    len(data.Sessions),
	}, nil
}

func buildModuleDataset(title string, data *models.ModuleData) export.Dataset {
	dataset := export.Dataset{Title: title, Headers: exportHeaders}
	for _, group := range data.Grouped {
		section := export.Section{Name: group.Group, Rows: make([]map[string]string, 0, len(group.Sessions))}
		for _, session := range group.Sessions {
			section.Rows = append(section.Rows, map[string]string{
				"Period":   session.Period,
				"Week":     session.Week,
				"Day":      session.Day,
				"Date":     session.Date,
				"Time":     session.Time,
				"Topic":    session.Topic,
				"Location": session.Location,
				"Group":    group.Group,
				"Hours":    session.Hours,
				"Staff":    session.Staff,
				"Room":     session.Room,
				"UID":      session.UID,
			})
		}
		dataset.Sections = append(dataset.Sections, section)
	}
	return dataset
}

// buildEvents turns dated sessions into calendar events. Undated sessions are left out.
func (s *ExportService) buildEvents(data *models.ModuleData) []export.Event {
	events := make([]export.Event, 0, len(data.Sessions))
	for _, session := range data.Sessions {
		start, ok := sessionStart(session, s.location)
		if !ok {
			continue
		}
		uid := session.UID
		if uid == "" {
			uid = uuid.NewString()
		}
		summary := session.Module
		if session.Topic != "" {
			summary = fmt.Sprintf("%s: %s", session.Module, session.Topic)
		}
		location := session.Room
		if location == "" {
			location = session.Location
		}
		var details []string
		if session.Group != "" {
			details = append(details, "Group: "+session.Group)
		}
		if session.Staff != "" {
			details = append(details, "Staff: "+session.Staff)
		}
		if session.Week != "" {
			details = append(details, "Week: "+session.Week)
		}
		events = append(events, export.Event{
			UID:         uid,
			Summary:     summary,
			Description: strings.Join(details, "\n"),
			Location:    location,
			Start:       start,
			Duration:    sessionDuration(session.Hours),
		})
	}
	return events
}

func sessionStart(session models.SessionRecord, loc *time.Location) (time.Time, bool) {
	if session.Date == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(dateLayout, session.Date, loc)
	if err != nil {
		instant, perr := time.Parse(time.RFC3339, session.Date)
		if perr != nil {
			return time.Time{}, false
		}
		local := instant.In(loc)
		day = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	}
	for _, layout := range []string{timeOfDayLayout, "15:04"} {
		if t, err := time.Parse(layout, session.Time); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
		}
	}
	return day, true
}

func sessionDuration(hours string) time.Duration {
	value, err := strconv.ParseFloat(strings.TrimSpace(hours), 64)
	if err != nil || value <= 0 {
		return time.Hour
	}
	return time.Duration(value * float64(time.Hour))
}

func sanitizeFilename(raw string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "", "'", "")
	result := strings.Trim(replacer.Replace(strings.TrimSpace(raw)), "_")
	if result == "" {
		return "export"
	}
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
