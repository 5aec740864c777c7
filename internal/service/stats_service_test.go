package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/models"
)

type fakeStatsRepo struct {
	totalsByWindow map[string]decimal.Decimal
	total          decimal.Decimal
	uniqueUsers    int
	openIssues     int
	userIssues     int
	topItem        *models.MostOrderedItem
	err            error
}

func windowKey(from, to time.Time) string {
	return from.Format(time.RFC3339) + "|" + to.Format(time.RFC3339)
}

func (f *fakeStatsRepo) TotalSpentByUser(context.Context, string) (decimal.Decimal, error) {
	return f.total, f.err
}

func (f *fakeStatsRepo) SpentByUserBetween(_ context.Context, _ string, from, to time.Time) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.totalsByWindow[windowKey(from, to)], nil
}

func (f *fakeStatsRepo) TotalBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.totalsByWindow[windowKey(from, to)], nil
}

func (f *fakeStatsRepo) UniqueUsersBetween(context.Context, time.Time, time.Time) (int, error) {
	return f.uniqueUsers, f.err
}

func (f *fakeStatsRepo) OpenIssuesCount(context.Context) (int, error) {
	return f.openIssues, f.err
}

func (f *fakeStatsRepo) IssuesCountByUser(context.Context, string) (int, error) {
	return f.userIssues, f.err
}

func (f *fakeStatsRepo) MostOrderedItemByUser(context.Context, string) (*models.MostOrderedItem, error) {
	return f.topItem, f.err
}

func newStatsService(repo statsRepository, loc *time.Location, at time.Time) *StatsService {
	svc := NewStatsService(repo, nil, loc, zap.NewNop())
	svc.now = func() time.Time { return at }
	return svc
}

func TestChangePercent(t *testing.T) {
	cases := []struct {
		name     string
		previous string
		current  string
		want     string
	}{
		{"both zero", "0", "0", "0"},
		{"zero previous", "0", "50", "5000"},
		{"halved", "100", "50", "-50"},
		{"grown", "100", "150", "50"},
		{"fractional", "80", "100", "25"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			previous := decimal.RequireFromString(tc.previous)
			current := decimal.RequireFromString(tc.current)
			got := ChangePercent(previous, current)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

func TestMonthlyChangeByUser(t *testing.T) {
	loc := time.UTC
	at := time.Date(2024, 4, 18, 9, 30, 0, 0, loc)
	march := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, loc)
	repo := &fakeStatsRepo{totalsByWindow: map[string]decimal.Decimal{
		windowKey(march, april):               decimal.RequireFromString("100"),
		windowKey(april, april.AddDate(0, 1, 0)): decimal.RequireFromString("150"),
	}}
	svc := newStatsService(repo, loc, at)

	change, err := svc.MonthlyChangeByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, change.Equal(decimal.RequireFromString("50")), "got %s", change)
}

func TestDailyChangeZeroPrevious(t *testing.T) {
	loc := time.UTC
	at := time.Date(2024, 4, 18, 9, 30, 0, 0, loc)
	today := time.Date(2024, 4, 18, 0, 0, 0, 0, loc)
	yesterday := today.AddDate(0, 0, -1)
	repo := &fakeStatsRepo{totalsByWindow: map[string]decimal.Decimal{
		windowKey(yesterday, today):            decimal.Zero,
		windowKey(today, today.AddDate(0, 0, 1)): decimal.RequireFromString("50"),
	}}
	svc := newStatsService(repo, loc, at)

	change, err := svc.DailyChange(context.Background())
	require.NoError(t, err)
	assert.True(t, change.Equal(decimal.RequireFromString("5000")), "got %s", change)
}

func TestDayWindowUsesConfiguredTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	// 20:00 UTC on the 17th is already past local midnight on the 18th.
	at := time.Date(2024, 4, 17, 20, 0, 0, 0, time.UTC)
	svc := newStatsService(&fakeStatsRepo{}, loc, at)

	from, to := svc.dayWindow(0)
	assert.Equal(t, 18, from.Day())
	assert.Equal(t, time.Date(2024, 4, 18, 0, 0, 0, 0, loc), from)
	assert.Equal(t, from.AddDate(0, 0, 1), to)
}

func TestMonthWindowBounds(t *testing.T) {
	loc := time.UTC
	at := time.Date(2024, 1, 31, 12, 0, 0, 0, loc)
	svc := newStatsService(&fakeStatsRepo{}, loc, at)

	from, to := svc.monthWindow(0)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, loc), to)

	prevFrom, prevTo := svc.monthWindow(-1)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, loc), prevFrom)
	assert.Equal(t, from, prevTo)
}

func TestAggregatesReturnZeroNotError(t *testing.T) {
	svc := newStatsService(&fakeStatsRepo{totalsByWindow: map[string]decimal.Decimal{}}, time.UTC, time.Date(2024, 4, 18, 9, 0, 0, 0, time.UTC))

	total, err := svc.TotalSpent(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	monthly, err := svc.MonthlySpent(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, monthly.IsZero())

	users, err := svc.UniqueUsersToday(context.Background())
	require.NoError(t, err)
	assert.Zero(t, users)
}

func TestMonthlyChangePropagatesFirstFailure(t *testing.T) {
	repo := &fakeStatsRepo{err: errors.New("connection reset")}
	svc := newStatsService(repo, time.UTC, time.Date(2024, 4, 18, 9, 0, 0, 0, time.UTC))

	_, err := svc.MonthlyChange(context.Background())
	require.Error(t, err)
}

func TestMostOrderedItemAbsent(t *testing.T) {
	svc := newStatsService(&fakeStatsRepo{}, time.UTC, time.Now())

	item, err := svc.MostOrderedItem(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestMetricReadsFeedSnapshot(t *testing.T) {
	metrics := NewMetricsService()
	repo := &fakeStatsRepo{total: decimal.RequireFromString("120.50"), openIssues: 2}
	svc := NewStatsService(repo, metrics, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 4, 18, 9, 0, 0, 0, time.UTC) }

	_, err := svc.TotalSpent(context.Background(), "u1")
	require.NoError(t, err)
	_, err = svc.OpenIssues(context.Background())
	require.NoError(t, err)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(2), snap.DBQueryCount)
	assert.GreaterOrEqual(t, snap.AverageDBQueryDurationMs, float64(0))
}

func TestFailedReadsNotCounted(t *testing.T) {
	metrics := NewMetricsService()
	repo := &fakeStatsRepo{err: errors.New("connection reset")}
	svc := NewStatsService(repo, metrics, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 4, 18, 9, 0, 0, 0, time.UTC) }

	_, err := svc.TotalSpent(context.Background(), "u1")
	require.Error(t, err)

	assert.Zero(t, metrics.Snapshot().DBQueryCount)
}
