package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/timetable-admin-api/internal/service"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
)

func guardedRouter(auth *service.AuthService, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PATCH("/sessions/:uid", AdminAuth(auth), Audit(logger, "session.update"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func patch(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/sessions/u1", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminAuthDisabledPassesThrough(t *testing.T) {
	auth := service.NewAuthService(config.AuthConfig{Enabled: false}, nil)
	rec := patch(guardedRouter(auth, nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAuthRejectsMissingOrBadToken(t *testing.T) {
	auth := service.NewAuthService(config.AuthConfig{Enabled: true, Secret: "s3cret"}, nil)
	r := guardedRouter(auth, nil)

	assert.Equal(t, http.StatusUnauthorized, patch(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, patch(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, patch(r, "Bearer not-a-jwt").Code)
}

func TestAdminAuthAcceptsValidTokenAndAudits(t *testing.T) {
	auth := service.NewAuthService(config.AuthConfig{Enabled: true, Secret: "s3cret"}, nil)
	issued, err := auth.IssueToken("coordinator", time.Hour)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	rec := patch(guardedRouter(auth, zap.New(core)), "Bearer "+issued.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "coordinator", fields["actor"])
	assert.Equal(t, "u1", fields["resource_id"])
	assert.Equal(t, "session.update", fields["action"])
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/modules", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/modules", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `path="unmatched"`)
	assert.Contains(t, rec.Body.String(), `path="/modules"`)
}
