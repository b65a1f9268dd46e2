package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/pkg/config"
)

const (
	staffList = "staff"
	roomList  = "rooms"
)

// DirectoryService lists the staff and room names offered as edit choices.
type DirectoryService struct {
	store  sheetStore
	cfg    config.SheetConfig
	cache  *CacheService
	logger *zap.Logger
}

// NewDirectoryService constructs the service. cache may be nil.
func NewDirectoryService(store sheetStore, cfg config.SheetConfig, cache *CacheService, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{store: store, cfg: cfg, cache: cache, logger: logger}
}

// Staff returns the trimmed, non-empty staff names in sheet order.
func (s *DirectoryService) Staff(ctx context.Context) ([]string, error) {
	return s.list(ctx, staffList, s.cfg.StaffSheet, s.cfg.StaffRange)
}

// Rooms returns the trimmed, non-empty room names in sheet order.
func (s *DirectoryService) Rooms(ctx context.Context) ([]string, error) {
	return s.list(ctx, roomList, s.cfg.RoomSheet, s.cfg.RoomRange)
}

// Invalidate drops cached directory lists so the next call re-reads the sheets.
func (s *DirectoryService) Invalidate(ctx context.Context) error {
	return s.cache.Purge(ctx)
}

func (s *DirectoryService) list(ctx context.Context, list, sheetName, rawRange string) ([]string, error) {
	if strings.TrimSpace(s.cfg.SpreadsheetID) == "" {
		return nil, s.cfg.Validate()
	}

	if cached, ok := s.cache.Names(ctx, list); ok {
		return cached, nil
	}

	rows, _, err := readTable(ctx, s.store, s.cfg.SpreadsheetID, sheetName, rawRange)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0].String())
		if name != "" {
			names = append(names, name)
		}
	}

	s.cache.StoreNames(ctx, list, names)
	s.logger.Debug("directory list loaded", zap.String("list", list), zap.Int("count", len(names)))
	return names, nil
}
