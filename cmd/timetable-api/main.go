package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-admin-api/api/swagger"
	"github.com/noah-isme/timetable-admin-api/internal/handler"
	"github.com/noah-isme/timetable-admin-api/internal/middleware"
	"github.com/noah-isme/timetable-admin-api/internal/repository"
	"github.com/noah-isme/timetable-admin-api/internal/service"
	"github.com/noah-isme/timetable-admin-api/pkg/cache"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
	"github.com/noah-isme/timetable-admin-api/pkg/database"
	"github.com/noah-isme/timetable-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/timetable-admin-api/pkg/storage"
)

// @title Timetable Admin API
// @version 1.0.0
// @description Query and edit a teaching timetable held in a workbook or a Postgres cell store.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// rowStore is what the services need from a backend.
type rowStore interface {
	OpenSheet(ctx context.Context, spreadsheetID, name string) (repository.Sheet, error)
}

type closer func() error

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	metrics := service.NewMetricsService()

	store, checks, closers, err := buildStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to init row store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	cacheSvc, cacheCloser, err := buildCache(ctx, cfg, metrics, logr)
	if err != nil {
		logr.Fatal("failed to init directory cache", zap.Error(err))
	}
	if cacheCloser != nil {
		closers = append(closers, cacheCloser)
	}
	defer func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logr.Warn("close failed", zap.Error(err))
			}
		}
	}()

	if err := cfg.Sheet.Validate(); err != nil {
		logr.Warn("sheet configuration incomplete; data routes will answer CONFIG_MISSING", zap.Error(err))
	}

	rows := service.NewInstrumentedStore(store, metrics)
	validate := validator.New()
	authSvc := service.NewAuthService(cfg.Auth, logr)
	timetableSvc := service.NewTimetableService(rows, cfg.Sheet, logr)
	calendarSvc := service.NewAcademicCalendarService(rows, cfg.Sheet, logr)
	updateSvc := service.NewSessionUpdateService(rows, calendarSvc, cfg.Sheet, metrics, logr)
	directorySvc := service.NewDirectoryService(rows, cfg.Sheet, cacheSvc, logr)
	exportSvc := service.NewExportService(timetableSvc, cfg.Sheet.Location(), logr)
	diagnosticsSvc := service.NewDiagnosticsService(rows, cfg.Sheet, cfg.Store.Backend, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Timetable:   handler.NewTimetableHandler(timetableSvc, exportSvc, validate),
		Directory:   handler.NewDirectoryHandler(directorySvc),
		Calendar:    handler.NewCalendarHandler(calendarSvc, validate),
		Sessions:    handler.NewSessionHandler(updateSvc, validate),
		Diagnostics: handler.NewDiagnosticsHandler(diagnosticsSvc),
		Metrics:     handler.NewMetricsHandler(metrics, checks),
	}, authSvc, logr)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("backend", cfg.Store.Backend),
			zap.Bool("auth", authSvc.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildStore opens the configured row store and returns its readiness checks.
func buildStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (rowStore, map[string]handler.ReadinessCheck, []closer, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
		logr.Info("row store: postgres", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
		return repository.NewSheetCellRepository(db), checks, []closer{db.Close}, nil

	case config.StoreBackendWorkbook, "":
		switch cfg.Store.WorkbookSource {
		case config.WorkbookSourceMinIO:
			objects, err := storage.NewObjectStorage(cfg.MinIO)
			if err != nil {
				return nil, nil, nil, err
			}
			checks := map[string]handler.ReadinessCheck{"minio": objects.Ping}
			logr.Info("row store: workbook in object storage", zap.String("endpoint", cfg.MinIO.Endpoint), zap.String("bucket", cfg.MinIO.Bucket))
			return repository.NewWorkbookRepository(objects, cfg.Sheet.Location()), checks, nil, nil
		case config.WorkbookSourceFile, "":
			files, err := storage.NewLocalStorage(cfg.Store.WorkbookDir)
			if err != nil {
				return nil, nil, nil, err
			}
			logr.Info("row store: workbook on disk", zap.String("dir", cfg.Store.WorkbookDir))
			return repository.NewWorkbookRepository(files, cfg.Sheet.Location()), nil, nil, nil
		default:
			return nil, nil, nil, fmt.Errorf("unknown WORKBOOK_SOURCE %q", cfg.Store.WorkbookSource)
		}

	default:
		return nil, nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
}

// buildCache returns the directory cache. A disabled cache is still a valid service.
func buildCache(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*service.CacheService, closer, error) {
	dir := cfg.Directory
	if !dir.CacheEnabled {
		return service.NewCacheService(nil, metrics, dir.CacheTTL, logr, false), nil, nil
	}

	switch dir.CacheBackend {
	case config.CacheBackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewCacheRepository(client, "timetable", logr)
		return service.NewCacheService(repo, metrics, dir.CacheTTL, logr, true), repo.Close, nil
	case config.CacheBackendMemory, "":
		repo := repository.NewMemoryCacheRepository(dir.CacheTTL)
		return service.NewCacheService(repo, metrics, dir.CacheTTL, logr, true), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown DIRECTORY_CACHE_BACKEND %q", dir.CacheBackend)
	}
}
