package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/models"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
)

type mealTimeRowsRepository interface {
	MealTimeRows(ctx context.Context, userID string, from, to time.Time) ([]models.MealTimeOrderRow, error)
	MealTimeRowsGlobal(ctx context.Context, from, to time.Time) ([]models.MealTimeOrderRow, error)
}

// AnalyticsService builds the dense daily meal-time series behind the
// dashboard chart. Buckets count quantity, not spend, and cancelled orders
// still count: the chart shows kitchen demand, not revenue.
type AnalyticsService struct {
	repo     mealTimeRowsRepository
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	loc      *time.Location
	cacheTTL time.Duration
	now      func() time.Time
}

// AnalyticsServiceParams groups constructor dependencies.
type AnalyticsServiceParams struct {
	Repo     mealTimeRowsRepository
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	Location *time.Location
	CacheTTL time.Duration
}

// NewAnalyticsService constructs an AnalyticsService with sane defaults.
func NewAnalyticsService(params AnalyticsServiceParams) *AnalyticsService {
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnalyticsService{
		repo:     params.Repo,
		cache:    params.Cache,
		metrics:  params.Metrics,
		logger:   logger,
		loc:      loc,
		cacheTTL: ttl,
		now:      time.Now,
	}
}

// MealTimeSeries produces one bucket per calendar day over the window,
// ascending by date, zero-filled for days with no orders. An empty userID
// aggregates the whole mess. The boolean reports cache utilisation.
func (s *AnalyticsService) MealTimeSeries(ctx context.Context, userID string, window models.TimeWindow) ([]models.MealTimeBucket, bool, error) {
	days := window.Days()
	if days == 0 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported window %q", window))
	}

	scope := userID
	if scope == "" {
		scope = "all"
	}
	cacheKey := fmt.Sprintf("dash:series:%s:%s", scope, window)
	if s.cache != nil {
		var cached []models.MealTimeBucket
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	today := s.startOfDay(s.now())
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	start := time.Now()
	var rows []models.MealTimeOrderRow
	var err error
	if userID == "" {
		rows, err = s.repo.MealTimeRowsGlobal(ctx, from, to)
	} else {
		rows, err = s.repo.MealTimeRows(ctx, userID, from, to)
	}
	if err != nil {
		return nil, false, fmt.Errorf("load meal time rows: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("meal_time_series", time.Since(start))
	}

	series := s.bucketize(rows, from, days)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, series, s.cacheTTL); err != nil {
			s.logger.Warn("series cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return series, false, nil
}

func (s *AnalyticsService) startOfDay(t time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

// bucketize folds the raw rows into a dense daily axis. Rows whose local
// date falls outside the axis are dropped; rows with no joined serving
// slot land in the Breakfast bucket.
func (s *AnalyticsService) bucketize(rows []models.MealTimeOrderRow, from time.Time, days int) []models.MealTimeBucket {
	series := make([]models.MealTimeBucket, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i).Format("2006-01-02")
		series[i] = models.MealTimeBucket{Date: date}
		index[date] = i
	}

	for _, row := range rows {
		date := row.OrderTime.In(s.loc).Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			continue
		}
		mealTime := models.MealBreakfast
		if row.MealTime != nil {
			mealTime = *row.MealTime
		}
		switch mealTime {
		case models.MealLunch:
			series[i].Lunch += row.Quantity
		case models.MealSnacks:
			series[i].Snacks += row.Quantity
		case models.MealDinner:
			series[i].Dinner += row.Quantity
		default:
			series[i].Breakfast += row.Quantity
		}
	}
	return series
}
