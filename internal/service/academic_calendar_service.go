package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

var weekPattern = regexp.MustCompile(`^([0-9]+)(?:\.0*)?$`)

var weekdays = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// AcademicCalendarService reads teaching period start dates and resolves session dates.
type AcademicCalendarService struct {
	store  sheetStore
	cfg    config.SheetConfig
	logger *zap.Logger
}

// NewAcademicCalendarService constructs the service.
func NewAcademicCalendarService(store sheetStore, cfg config.SheetConfig, logger *zap.Logger) *AcademicCalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicCalendarService{store: store, cfg: cfg, logger: logger}
}

// LoadCalendar returns the valid calendar entries in sheet order. Rows with a blank
// period or an unreadable start date are skipped.
func (s *AcademicCalendarService) LoadCalendar(ctx context.Context) ([]models.CalendarEntry, error) {
	if strings.TrimSpace(s.cfg.SpreadsheetID) == "" {
		return nil, s.cfg.Validate()
	}
	rows, rng, err := readTable(ctx, s.store, s.cfg.SpreadsheetID, s.cfg.CalendarSheet, s.cfg.CalendarRange)
	if err != nil {
		return nil, err
	}

	loc := s.cfg.Location()
	entries := make([]models.CalendarEntry, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		period := strings.TrimSpace(row[0].String())
		if period == "" {
			continue
		}
		start, ok := parseStartDate(row[1], loc)
		if !ok {
			s.logger.Debug("calendar row skipped",
				zap.Int("row", i+rng.StartRow),
				zap.String("period", period),
				zap.String("start", row[1].String()))
			continue
		}
		entries = append(entries, models.CalendarEntry{Period: period, StartDate: start})
	}
	return entries, nil
}

// ResolveDate loads the calendar and resolves the date of a (period, week, day) triple.
func (s *AcademicCalendarService) ResolveDate(ctx context.Context, period, week, day string) (*models.ResolvedDate, error) {
	calendar, err := s.LoadCalendar(ctx)
	if err != nil {
		return nil, err
	}
	resolved, err := ResolveSessionDate(calendar, period, week, day, s.cfg.Location())
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// ResolveSessionDate computes the calendar date of day in the given week of period.
// Week 1 starts on the period's start date; the result is the first matching weekday
// on or after the start of that week.
func ResolveSessionDate(calendar []models.CalendarEntry, period, week, day string, loc *time.Location) (models.ResolvedDate, error) {
	if loc == nil {
		loc = time.UTC
	}
	period = strings.TrimSpace(period)

	var (
		start time.Time
		found bool
	)
	for _, entry := range calendar {
		if entry.Period == period {
			start, found = entry.StartDate, true
			break
		}
	}
	if !found {
		return models.ResolvedDate{}, appErrors.Clone(appErrors.ErrPeriodNotFound, fmt.Sprintf("teaching period %q not found in academic calendar", period))
	}

	weekNumber, err := ParseWeekNumber(week)
	if err != nil {
		return models.ResolvedDate{}, err
	}

	target, ok := weekdays[strings.TrimSpace(day)]
	if !ok {
		return models.ResolvedDate{}, appErrors.Clone(appErrors.ErrInvalidDay, fmt.Sprintf("invalid day %q", day))
	}

	start = start.In(loc)
	base := time.Date(start.Year(), start.Month(), start.Day()+(weekNumber-1)*7, 0, 0, 0, 0, loc)
	offset := (int(target) - int(base.Weekday()) + 7) % 7
	date := time.Date(base.Year(), base.Month(), base.Day()+offset, 0, 0, 0, 0, loc)

	return models.ResolvedDate{
		Period:    period,
		Week:      weekNumber,
		Day:       target.String(),
		Date:      date,
		Formatted: date.Format(dateLayout),
	}, nil
}

// ParseWeekNumber accepts positive integers, including integral decimals such as "3.0".
// Signs, exponents and hex forms are rejected.
func ParseWeekNumber(raw string) (int, error) {
	invalid := appErrors.Clone(appErrors.ErrInvalidWeek, fmt.Sprintf("invalid week %q", raw))
	match := weekPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return 0, invalid
	}
	value, err := strconv.Atoi(match[1])
	if err != nil || value < 1 || value > math.MaxInt32 {
		return 0, invalid
	}
	return value, nil
}

func parseStartDate(cell models.CellValue, loc *time.Location) (time.Time, bool) {
	switch cell.Kind {
	case models.CellDateTime:
		return cell.Time, true
	case models.CellText:
		text := strings.TrimSpace(cell.Text)
		if t, err := time.ParseInLocation(dateLayout, text, loc); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
