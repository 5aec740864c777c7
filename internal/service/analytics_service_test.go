package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/models"
)

type fakeMealTimeRepo struct {
	rows []models.MealTimeOrderRow
	err  error
}

func (f *fakeMealTimeRepo) MealTimeRows(context.Context, string, time.Time, time.Time) ([]models.MealTimeOrderRow, error) {
	return f.rows, f.err
}

func (f *fakeMealTimeRepo) MealTimeRowsGlobal(context.Context, time.Time, time.Time) ([]models.MealTimeOrderRow, error) {
	return f.rows, f.err
}

func mealTimePtr(m models.MealTime) *models.MealTime { return &m }

func newAnalyticsService(repo mealTimeRowsRepository, at time.Time) *AnalyticsService {
	svc := NewAnalyticsService(AnalyticsServiceParams{Repo: repo, Logger: zap.NewNop()})
	svc.now = func() time.Time { return at }
	return svc
}

func TestMealTimeSeriesZeroFill(t *testing.T) {
	at := time.Date(2024, 4, 18, 10, 0, 0, 0, time.UTC)
	repo := &fakeMealTimeRepo{rows: []models.MealTimeOrderRow{
		{OrderTime: time.Date(2024, 4, 14, 8, 0, 0, 0, time.UTC), Quantity: 2, MealTime: mealTimePtr(models.MealBreakfast)},
		{OrderTime: time.Date(2024, 4, 17, 13, 0, 0, 0, time.UTC), Quantity: 1, MealTime: mealTimePtr(models.MealLunch)},
	}}
	svc := newAnalyticsService(repo, at)

	series, hit, err := svc.MealTimeSeries(context.Background(), "u1", models.Window7d)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, series, 7)

	assert.Equal(t, "2024-04-12", series[0].Date)
	assert.Equal(t, "2024-04-18", series[6].Date)

	empty := 0
	for _, bucket := range series {
		if bucket.Breakfast == 0 && bucket.Lunch == 0 && bucket.Snacks == 0 && bucket.Dinner == 0 {
			empty++
		}
	}
	assert.Equal(t, 5, empty)
	assert.Equal(t, 2, series[2].Breakfast)
	assert.Equal(t, 1, series[5].Lunch)
}

func TestMealTimeSeriesSumsQuantityNotAmount(t *testing.T) {
	at := time.Date(2024, 4, 18, 10, 0, 0, 0, time.UTC)
	day := time.Date(2024, 4, 18, 13, 0, 0, 0, time.UTC)
	repo := &fakeMealTimeRepo{rows: []models.MealTimeOrderRow{
		{OrderTime: day, Quantity: 2, MealTime: mealTimePtr(models.MealLunch)},
		{OrderTime: day.Add(30 * time.Minute), Quantity: 3, MealTime: mealTimePtr(models.MealLunch)},
	}}
	svc := newAnalyticsService(repo, at)

	series, _, err := svc.MealTimeSeries(context.Background(), "u1", models.Window7d)
	require.NoError(t, err)
	assert.Equal(t, 5, series[6].Lunch)
}

func TestMealTimeSeriesDropsOutOfWindowRows(t *testing.T) {
	at := time.Date(2024, 4, 18, 10, 0, 0, 0, time.UTC)
	repo := &fakeMealTimeRepo{rows: []models.MealTimeOrderRow{
		{OrderTime: time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC), Quantity: 4, MealTime: mealTimePtr(models.MealDinner)},
	}}
	svc := newAnalyticsService(repo, at)

	series, _, err := svc.MealTimeSeries(context.Background(), "u1", models.Window7d)
	require.NoError(t, err)
	for _, bucket := range series {
		assert.Zero(t, bucket.Dinner)
	}
}

func TestMealTimeSeriesLocalDateBucketing(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	at := time.Date(2024, 4, 18, 10, 0, 0, 0, loc)
	// 20:00 UTC on the 17th is 01:30 on the 18th in Kolkata.
	repo := &fakeMealTimeRepo{rows: []models.MealTimeOrderRow{
		{OrderTime: time.Date(2024, 4, 17, 20, 0, 0, 0, time.UTC), Quantity: 1, MealTime: mealTimePtr(models.MealDinner)},
	}}
	svc := NewAnalyticsService(AnalyticsServiceParams{Repo: repo, Logger: zap.NewNop(), Location: loc})
	svc.now = func() time.Time { return at }

	series, _, err := svc.MealTimeSeries(context.Background(), "u1", models.Window7d)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-18", series[6].Date)
	assert.Equal(t, 1, series[6].Dinner)
}

func TestMealTimeSeriesMissingSlotCountsAsBreakfast(t *testing.T) {
	at := time.Date(2024, 4, 18, 10, 0, 0, 0, time.UTC)
	repo := &fakeMealTimeRepo{rows: []models.MealTimeOrderRow{
		{OrderTime: at, Quantity: 2, MealTime: nil},
	}}
	svc := newAnalyticsService(repo, at)

	series, _, err := svc.MealTimeSeries(context.Background(), "u1", models.Window7d)
	require.NoError(t, err)
	assert.Equal(t, 2, series[6].Breakfast)
}

func TestMealTimeSeriesWindowLengths(t *testing.T) {
	at := time.Date(2024, 4, 18, 10, 0, 0, 0, time.UTC)
	svc := newAnalyticsService(&fakeMealTimeRepo{}, at)

	for _, tc := range []struct {
		window models.TimeWindow
		want   int
	}{
		{models.Window7d, 7},
		{models.Window30d, 30},
		{models.Window90d, 90},
	} {
		series, _, err := svc.MealTimeSeries(context.Background(), "", tc.window)
		require.NoError(t, err)
		assert.Len(t, series, tc.want)
	}
}

func TestMealTimeSeriesRejectsUnknownWindow(t *testing.T) {
	svc := newAnalyticsService(&fakeMealTimeRepo{}, time.Now())

	_, _, err := svc.MealTimeSeries(context.Background(), "u1", models.TimeWindow("365d"))
	require.Error(t, err)
}

func TestMealTimeSeriesRepoFailure(t *testing.T) {
	svc := newAnalyticsService(&fakeMealTimeRepo{err: errors.New("timeout")}, time.Now())

	_, _, err := svc.MealTimeSeries(context.Background(), "u1", models.Window7d)
	require.Error(t, err)
}

func TestMealTimeSeriesTimesRepositoryFetch(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewAnalyticsService(AnalyticsServiceParams{
		Repo:    &fakeMealTimeRepo{},
		Metrics: metrics,
		Logger:  zap.NewNop(),
	})

	_, _, err := svc.MealTimeSeries(context.Background(), "u1", models.Window7d)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), metrics.Snapshot().DBQueryCount)
}
