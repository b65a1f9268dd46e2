package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/pkg/middleware/requestid"
)

// Audit logs every successful timetable edit with the acting admin, if known.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		actor := "anonymous"
		if admin := AdminFromContext(c); admin != nil {
			actor = admin.Subject
		}
		logger.Info("audit",
			zap.String("action", action),
			zap.String("actor", actor),
			zap.String("route", c.FullPath()),
			zap.String("resource_id", c.Param("uid")),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", requestid.Value(c)),
		)
	}
}
