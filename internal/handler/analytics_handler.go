package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/dto"
	"github.com/hostelhub/mess-api/internal/middleware"
	"github.com/hostelhub/mess-api/internal/models"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
	"github.com/hostelhub/mess-api/pkg/response"
)

type analyticsService interface {
	MealTimeSeries(ctx context.Context, userID string, window models.TimeWindow) ([]models.MealTimeBucket, bool, error)
}

// AnalyticsHandler serves the per-meal order series behind the trend charts.
type AnalyticsHandler struct {
	service analyticsService
	logger  *zap.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(service analyticsService, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{service: service, logger: logger}
}

// StudentSeries godoc
// @Summary Daily per-meal order counts for the caller
// @Tags Analytics
// @Produce json
// @Param window query string false "7d, 30d or 90d" default(7d)
// @Success 200 {object} response.Envelope
// @Router /analytics/orders [get]
func (h *AnalyticsHandler) StudentSeries(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.serve(c, claims.UserID)
}

// AdminSeries godoc
// @Summary Daily per-meal order counts across all students
// @Tags Analytics
// @Produce json
// @Param window query string false "7d, 30d or 90d" default(7d)
// @Success 200 {object} response.Envelope
// @Router /analytics/orders/all [get]
func (h *AnalyticsHandler) AdminSeries(c *gin.Context) {
	h.serve(c, "")
}

func (h *AnalyticsHandler) serve(c *gin.Context, userID string) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	window := models.TimeWindow(c.DefaultQuery("window", string(models.Window7d)))
	if window.Days() == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "window must be one of 7d, 30d, 90d"))
		return
	}

	start := time.Now()
	series, cacheHit, err := h.service.MealTimeSeries(c.Request.Context(), userID, window)
	if err != nil {
		// Charts render an empty series when the data cannot be
		// fetched; the failure is logged, not surfaced.
		h.logger.Warn("meal time series unavailable",
			zap.String("window", string(window)),
			zap.Error(err))
		series = []models.MealTimeBucket{}
		cacheHit = false
	}

	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, dto.MealTimeSeriesResponse{
		Window: window,
		Series: series,
	}, nil, meta)
}
