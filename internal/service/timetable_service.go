package service

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
)

// TimetableService answers read queries over the timetable sheet.
type TimetableService struct {
	store  sheetStore
	cfg    config.SheetConfig
	mapper *SchemaMapper
	logger *zap.Logger
}

// NewTimetableService constructs the service.
func NewTimetableService(store sheetStore, cfg config.SheetConfig, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		store:  store,
		cfg:    cfg,
		mapper: NewSchemaMapper(cfg.Columns, cfg.Location()),
		logger: logger,
	}
}

// Records returns every present row of the timetable as a session record.
func (s *TimetableService) Records(ctx context.Context) ([]models.SessionRecord, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	rows, rng, err := readTable(ctx, s.store, s.cfg.SpreadsheetID, s.cfg.TimetableSheet, s.cfg.DataRange)
	if err != nil {
		return nil, err
	}

	records := make([]models.SessionRecord, 0, len(rows))
	for i, row := range rows {
		if !IsPresent(row) {
			continue
		}
		records = append(records, s.mapper.Record(i+rng.StartRow, row))
	}
	s.logger.Debug("timetable loaded", zap.Int("rows", len(rows)), zap.Int("records", len(records)))
	return records, nil
}

// ListModules returns the distinct (period, module) pairs in first-seen order.
func (s *TimetableService) ListModules(ctx context.Context) ([]models.ModuleRef, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	modules := make([]models.ModuleRef, 0)
	for _, record := range records {
		if record.Module == "" {
			continue
		}
		key := record.Period + record.Module
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		modules = append(modules, models.ModuleRef{Period: record.Period, Module: record.Module})
	}
	return modules, nil
}

// ListPeriods returns the distinct non-empty teaching periods sorted lexicographically.
func (s *TimetableService) ListPeriods(ctx context.Context) ([]string, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	periods := make([]string, 0)
	for _, record := range records {
		if record.Period == "" {
			continue
		}
		if _, ok := seen[record.Period]; ok {
			continue
		}
		seen[record.Period] = struct{}{}
		periods = append(periods, record.Period)
	}
	sort.Strings(periods)
	return periods, nil
}

// GetModuleData returns the group sessions of a module in a period, grouped and ordered
// for display. One-to-one sessions are excluded.
func (s *TimetableService) GetModuleData(ctx context.Context, module, period string) (*models.ModuleData, error) {
	module = strings.TrimSpace(module)
	period = strings.TrimSpace(period)

	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]models.SessionRecord, 0)
	for _, record := range records {
		if record.Module != module || record.Period != period {
			continue
		}
		if record.Location == models.IndividualLocation {
			continue
		}
		matches = append(matches, record)
	}
	return GroupSessions(module, period, matches), nil
}

// GroupSessions partitions sessions by group and orders groups and sessions for display.
// The flat Sessions list keeps sheet order.
func GroupSessions(module, period string, sessions []models.SessionRecord) *models.ModuleData {
	byGroup := make(map[string][]models.SessionRecord)
	labels := make([]string, 0)
	for _, session := range sessions {
		label := session.Group
		if label == "" {
			label = models.DefaultGroup
		}
		if _, ok := byGroup[label]; !ok {
			labels = append(labels, label)
		}
		byGroup[label] = append(byGroup[label], session)
	}

	sort.SliceStable(labels, func(i, j int) bool {
		ni, nj := groupNumber(labels[i]), groupNumber(labels[j])
		if ni != nj {
			return ni < nj
		}
		return labels[i] < labels[j]
	})

	data := &models.ModuleData{
		Module:   module,
		Period:   period,
		Sessions: append(make([]models.SessionRecord, 0, len(sessions)), sessions...),
		Groups:   labels,
		Grouped:  make([]models.SessionGroup, 0, len(labels)),
	}
	for _, label := range labels {
		group := byGroup[label]
		sort.SliceStable(group, func(i, j int) bool {
			wi, wj := leadingInt(group[i].Week), leadingInt(group[j].Week)
			if wi != wj {
				return wi < wj
			}
			return group[i].Period < group[j].Period
		})
		data.Grouped = append(data.Grouped, models.SessionGroup{Group: label, Sessions: group})
	}
	return data
}

// groupNumber is the first run of digits in a group label, or 0 when there is none.
// Runs too long for int64 saturate so they still sort after smaller numbers.
func groupNumber(label string) int64 {
	start := strings.IndexAny(label, "0123456789")
	if start < 0 {
		return 0
	}
	end := start
	for end < len(label) && label[end] >= '0' && label[end] <= '9' {
		end++
	}
	n, err := strconv.ParseInt(label[start:end], 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

// leadingInt parses the integer prefix of s after optional sign; anything else is 0.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
