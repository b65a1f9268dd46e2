package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type sessionServiceStub struct {
	uid     string
	column  int
	value   models.CellValue
	period  string
	week    string
	changes []models.SessionChange
	result  *models.BatchUpdateResult
	err     error
}

func (s *sessionServiceStub) SetField(_ context.Context, uid string, column int, value models.CellValue) error {
	s.uid, s.column, s.value = uid, column, value
	return s.err
}

func (s *sessionServiceStub) SetFieldWithDateRecalc(_ context.Context, uid string, column int, value models.CellValue, period, week string) error {
	s.uid, s.column, s.value, s.period, s.week = uid, column, value, period, week
	return s.err
}

func (s *sessionServiceStub) BatchUpdate(_ context.Context, changes []models.SessionChange) (*models.BatchUpdateResult, error) {
	s.changes = changes
	return s.result, s.err
}

func newJSONContext(method, target, body string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	return c, w
}

func TestSessionHandlerUpdate(t *testing.T) {
	svc := &sessionServiceStub{}
	handler := NewSessionHandler(svc, nil)
	c, w := newJSONContext(http.MethodPatch, "/sessions/u1", `{"column_index":11,"value":"Dr Smith"}`, gin.Param{Key: "uid", Value: "u1"})

	handler.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", svc.uid)
	assert.Equal(t, 11, svc.column)
	assert.Equal(t, models.TextCell("Dr Smith"), svc.value)
}

func TestSessionHandlerUpdateUnknownUID(t *testing.T) {
	svc := &sessionServiceStub{err: appErrors.Clone(appErrors.ErrRecordNotFound, "record with uid \"zzz\" not found")}
	handler := NewSessionHandler(svc, nil)
	c, w := newJSONContext(http.MethodPatch, "/sessions/zzz", `{"column_index":11,"value":"x"}`, gin.Param{Key: "uid", Value: "zzz"})

	handler.Update(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RECORD_NOT_FOUND", decodeEnvelope(t, w).Error.Code)
}

func TestSessionHandlerUpdateRequiresColumn(t *testing.T) {
	svc := &sessionServiceStub{}
	handler := NewSessionHandler(svc, nil)
	c, w := newJSONContext(http.MethodPatch, "/sessions/u1", `{"value":"x"}`, gin.Param{Key: "uid", Value: "u1"})

	handler.Update(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.uid)
}

func TestSessionHandlerUpdateWithDate(t *testing.T) {
	svc := &sessionServiceStub{}
	handler := NewSessionHandler(svc, nil)
	c, w := newJSONContext(http.MethodPatch, "/sessions/u1/with-date", `{"column_index":13,"value":"Friday","period":"TP1","week":2}`, gin.Param{Key: "uid", Value: "u1"})

	handler.UpdateWithDate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 13, svc.column)
	assert.Equal(t, "TP1", svc.period)
	assert.Equal(t, "2", svc.week)
}

func TestSessionHandlerBatch(t *testing.T) {
	svc := &sessionServiceStub{result: &models.BatchUpdateResult{Updated: 2, Total: 3}}
	handler := NewSessionHandler(svc, nil)
	body := `{"changes":[{"uid":"a","staff":"Dr Smith"},{"uid":"missing","room":"R1"},{"uid":"c","day":"Monday","period":"TP1","week":"1"}]}`
	c, w := newJSONContext(http.MethodPost, "/sessions/batch", body)

	handler.Batch(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.changes, 3)
	assert.Equal(t, "Dr Smith", *svc.changes[0].Staff)
	assert.JSONEq(t, `{"updated":2,"total":3}`, string(decodeEnvelope(t, w).Data))
}

func TestSessionHandlerBatchRejectsMalformedBody(t *testing.T) {
	for _, body := range []string{`{}`, `{"changes":{"uid":"a"}}`, `{"changes":[{"uid":"a","day":[]}]}`} {
		svc := &sessionServiceStub{}
		handler := NewSessionHandler(svc, nil)
		c, w := newJSONContext(http.MethodPost, "/sessions/batch", body)

		handler.Batch(c)

		require.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Nil(t, svc.changes, body)
	}
}

func TestSessionHandlerBatchPassesBlankUIDAndNullFields(t *testing.T) {
	svc := &sessionServiceStub{result: &models.BatchUpdateResult{Updated: 1, Total: 2}}
	handler := NewSessionHandler(svc, nil)
	c, w := newJSONContext(http.MethodPost, "/sessions/batch", `{"changes":[{"staff":"x"},{"uid":"a","day":null}]}`)

	handler.Batch(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.changes, 2)
	assert.Empty(t, svc.changes[0].UID)
	require.NotNil(t, svc.changes[1].Day)
	assert.Empty(t, *svc.changes[1].Day)
	assert.Nil(t, svc.changes[1].Staff)
}
