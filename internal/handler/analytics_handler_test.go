package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/hostelhub/mess-api/internal/middleware"
	"github.com/hostelhub/mess-api/internal/models"
)

type fakeAnalyticsSrv struct {
	series     []models.MealTimeBucket
	hit        bool
	err        error
	lastUserID string
	lastWindow models.TimeWindow
}

func (f *fakeAnalyticsSrv) MealTimeSeries(_ context.Context, userID string, window models.TimeWindow) ([]models.MealTimeBucket, bool, error) {
	f.lastUserID = userID
	f.lastWindow = window
	return f.series, f.hit, f.err
}

type seriesEnvelope struct {
	Data struct {
		Window string                  `json:"window"`
		Series []models.MealTimeBucket `json:"series"`
	} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

func TestAnalyticsHandlerStudentRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAnalyticsHandler(&fakeAnalyticsSrv{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analytics/orders", nil)

	handler.StudentSeries(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnalyticsHandlerDefaultsToWeekWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeAnalyticsSrv{series: []models.MealTimeBucket{}}
	handler := NewAnalyticsHandler(service, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analytics/orders", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.StudentSeries(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Window7d, service.lastWindow)
	assert.Equal(t, "user-1", service.lastUserID)
}

func TestAnalyticsHandlerRejectsUnknownWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAnalyticsHandler(&fakeAnalyticsSrv{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analytics/orders?window=14d", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.StudentSeries(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandlerDegradesToEmptySeries(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeAnalyticsSrv{err: errors.New("db down")}
	handler := NewAnalyticsHandler(service, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analytics/orders?window=30d", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.StudentSeries(c)

	// The chart renders an empty series instead of surfacing the failure.
	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope seriesEnvelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "30d", envelope.Data.Window)
	assert.Empty(t, envelope.Data.Series)
}

func TestAnalyticsHandlerAdminSeriesUnscoped(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeAnalyticsSrv{series: []models.MealTimeBucket{
		{Date: "2026-08-30", Lunch: 4},
	}}
	handler := NewAnalyticsHandler(service, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analytics/orders/all?window=90d", nil)

	handler.AdminSeries(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", service.lastUserID)
	assert.Equal(t, models.Window90d, service.lastWindow)

	var envelope seriesEnvelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Series, 1)
	assert.Equal(t, 4, envelope.Data.Series[0].Lunch)
}
