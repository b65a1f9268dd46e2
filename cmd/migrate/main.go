package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/pkg/config"
	"github.com/noah-isme/timetable-admin-api/pkg/database"
	"github.com/noah-isme/timetable-admin-api/pkg/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migrate [up|down]")
		fmt.Fprintln(os.Stderr, "Applies the embedded cell store schema to the database configured by DB_* variables.")
		flag.PrintDefaults()
	}
	flag.Parse()

	direction := database.MigrateUp
	if flag.NArg() > 0 {
		direction = flag.Arg(0)
	}
	if direction != database.MigrateUp && direction != database.MigrateDown {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB, direction, logr); err != nil {
		logr.Fatal("migration failed", zap.String("direction", direction), zap.Error(err))
	}
}
