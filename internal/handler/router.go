package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/middleware"
	"github.com/noah-isme/timetable-admin-api/internal/service"
)

// Handlers bundles every handler mounted by RegisterRoutes.
type Handlers struct {
	Timetable   *TimetableHandler
	Directory   *DirectoryHandler
	Calendar    *CalendarHandler
	Sessions    *SessionHandler
	Diagnostics *DiagnosticsHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts the operational endpoints on r and the API under prefix. Write
// routes go through the admin guard and the audit log.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService, logger *zap.Logger) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.GET("/timetable", h.Timetable.Timetable)
	api.GET("/modules", h.Timetable.Modules)
	api.GET("/modules/sessions", h.Timetable.ModuleSessions)
	api.GET("/modules/export", h.Timetable.Export)
	api.GET("/periods", h.Timetable.Periods)
	api.GET("/staff", h.Directory.Staff)
	api.GET("/rooms", h.Directory.Rooms)
	api.GET("/academic-calendar", h.Calendar.Calendar)
	api.GET("/academic-calendar/resolve", h.Calendar.Resolve)
	api.GET("/diagnostics", h.Diagnostics.Report)
	api.GET("/metrics/summary", h.Metrics.Summary)

	admin := api.Group("", middleware.AdminAuth(auth))
	admin.PATCH("/sessions/:uid", middleware.Audit(logger, "session.update"), h.Sessions.Update)
	admin.PATCH("/sessions/:uid/with-date", middleware.Audit(logger, "session.update_with_date"), h.Sessions.UpdateWithDate)
	admin.POST("/sessions/batch", middleware.Audit(logger, "session.batch_update"), h.Sessions.Batch)
	admin.DELETE("/directory/cache", middleware.Audit(logger, "directory.invalidate"), h.Directory.InvalidateCache)
}
