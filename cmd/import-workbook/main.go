package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/repository"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
	"github.com/noah-isme/timetable-admin-api/pkg/database"
	"github.com/noah-isme/timetable-admin-api/pkg/logger"
	"github.com/noah-isme/timetable-admin-api/pkg/storage"
)

// workbookSource holds the workbook being imported.
type workbookSource interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

func main() {
	var (
		sheetsFlag string
		migrate    bool
		timeout    time.Duration
	)
	flag.StringVar(&sheetsFlag, "sheets", "", "Comma separated sheet names to import (default: every sheet)")
	flag.BoolVar(&migrate, "migrate", true, "Apply the cell store schema before importing")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall import timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	spreadsheetID := cfg.Sheet.SpreadsheetID
	if spreadsheetID == "" {
		logr.Fatal("SPREADSHEET_ID is empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	source, err := openSource(cfg)
	if err != nil {
		logr.Fatal("failed to open workbook source", zap.Error(err))
	}
	workbooks := repository.NewWorkbookRepository(source, cfg.Sheet.Location())

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if migrate {
		if err := database.RunMigrations(db.DB, database.MigrateUp, logr); err != nil {
			logr.Fatal("migration failed", zap.Error(err))
		}
	}
	cells := repository.NewSheetCellRepository(db)

	names := splitSheets(sheetsFlag)
	if len(names) == 0 {
		names, err = workbooks.SheetNames(ctx, spreadsheetID)
		if err != nil {
			logr.Fatal("failed to list sheets", zap.Error(err))
		}
	}

	failed := 0
	for _, name := range names {
		rows, err := workbooks.Dump(ctx, spreadsheetID, name)
		if err != nil {
			logr.Error("failed to read sheet", zap.String("sheet", name), zap.Error(err))
			failed++
			continue
		}
		if err := cells.ReplaceSheet(ctx, spreadsheetID, name, rows); err != nil {
			logr.Error("failed to import sheet", zap.String("sheet", name), zap.Error(err))
			failed++
			continue
		}
		logr.Info("sheet imported", zap.String("spreadsheet_id", spreadsheetID), zap.String("sheet", name), zap.Int("rows", len(rows)))
	}

	if failed > 0 {
		logr.Error("import finished with failures", zap.Int("failed", failed), zap.Int("total", len(names)))
		os.Exit(1)
	}
	logr.Info("import finished", zap.Int("sheets", len(names)))
}

func openSource(cfg *config.Config) (workbookSource, error) {
	if cfg.Store.WorkbookSource == config.WorkbookSourceMinIO {
		objects, err := storage.NewObjectStorage(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return objects, nil
	}
	files, err := storage.NewLocalStorage(cfg.Store.WorkbookDir)
	if err != nil {
		return nil, err
	}
	return files, nil
}

func splitSheets(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
