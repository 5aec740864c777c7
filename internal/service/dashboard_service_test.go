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

type fakeDashboardStats struct {
	totalSpent    decimal.Decimal
	monthlySpent  decimal.Decimal
	monthlyByUser decimal.Decimal
	todaysTotal   decimal.Decimal
	monthlyTotal  decimal.Decimal
	dailyChange   decimal.Decimal
	monthlyChange decimal.Decimal
	uniqueUsers   int
	openIssues    int
	userIssues    int
	topItem       *models.MostOrderedItem
	err           error
}

func (f *fakeDashboardStats) TotalSpent(context.Context, string) (decimal.Decimal, error) {
	return f.totalSpent, f.err
}

func (f *fakeDashboardStats) MonthlySpent(context.Context, string) (decimal.Decimal, error) {
	return f.monthlySpent, f.err
}

func (f *fakeDashboardStats) MonthlyChangeByUser(context.Context, string) (decimal.Decimal, error) {
	return f.monthlyByUser, f.err
}

func (f *fakeDashboardStats) TodaysTotal(context.Context) (decimal.Decimal, error) {
	return f.todaysTotal, f.err
}

func (f *fakeDashboardStats) MonthlyTotal(context.Context) (decimal.Decimal, error) {
	return f.monthlyTotal, f.err
}

func (f *fakeDashboardStats) DailyChange(context.Context) (decimal.Decimal, error) {
	return f.dailyChange, f.err
}

func (f *fakeDashboardStats) MonthlyChange(context.Context) (decimal.Decimal, error) {
	return f.monthlyChange, f.err
}

func (f *fakeDashboardStats) UniqueUsersToday(context.Context) (int, error) {
	return f.uniqueUsers, f.err
}

func (f *fakeDashboardStats) OpenIssues(context.Context) (int, error) {
	return f.openIssues, f.err
}

func (f *fakeDashboardStats) IssuesCount(context.Context, string) (int, error) {
	return f.userIssues, f.err
}

func (f *fakeDashboardStats) MostOrderedItem(context.Context, string) (*models.MostOrderedItem, error) {
	return f.topItem, f.err
}

func TestStudentDashboardComposition(t *testing.T) {
	stats := &fakeDashboardStats{
		totalSpent:    decimal.RequireFromString("245.50"),
		monthlySpent:  decimal.RequireFromString("150"),
		monthlyByUser: decimal.RequireFromString("50"),
		userIssues:    2,
		topItem:       &models.MostOrderedItem{MenuID: "m1", Description: "Masala Dosa", TotalAmount: decimal.RequireFromString("80")},
	}
	svc := NewDashboardService(DashboardServiceParams{Stats: stats, Logger: zap.NewNop()})
	svc.now = func() time.Time { return time.Date(2024, 4, 18, 9, 0, 0, 0, time.UTC) }

	summary, hit, err := svc.Student(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, summary.TotalSpent.Equal(decimal.RequireFromString("245.50")))
	assert.True(t, summary.MonthlyChangePercent.Equal(decimal.RequireFromString("50")))
	require.NotNil(t, summary.MostOrderedItem)
	assert.Equal(t, "Masala Dosa", summary.MostOrderedItem.Description)
	assert.Equal(t, 2, summary.IssuesCount)
}

func TestStudentDashboardRequiresUser(t *testing.T) {
	svc := NewDashboardService(DashboardServiceParams{Stats: &fakeDashboardStats{}})

	_, _, err := svc.Student(context.Background(), "")
	require.Error(t, err)
}

func TestStudentDashboardNoOrders(t *testing.T) {
	svc := NewDashboardService(DashboardServiceParams{Stats: &fakeDashboardStats{}})

	summary, _, err := svc.Student(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, summary.TotalSpent.IsZero())
	assert.Nil(t, summary.MostOrderedItem)
}

func TestAdminDashboardComposition(t *testing.T) {
	stats := &fakeDashboardStats{
		todaysTotal:   decimal.RequireFromString("320"),
		monthlyTotal:  decimal.RequireFromString("9100"),
		dailyChange:   decimal.RequireFromString("-12.5"),
		monthlyChange: decimal.RequireFromString("8"),
		uniqueUsers:   41,
		openIssues:    3,
	}
	svc := NewDashboardService(DashboardServiceParams{Stats: stats, Logger: zap.NewNop()})

	summary, hit, err := svc.Admin(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, summary.TodaysTotal.Equal(decimal.RequireFromString("320")))
	assert.True(t, summary.DailyChangePercent.Equal(decimal.RequireFromString("-12.5")))
	assert.Equal(t, 41, summary.UniqueUsersToday)
	assert.Equal(t, 3, summary.OpenIssues)
}

func TestAdminDashboardPropagatesFailure(t *testing.T) {
	svc := NewDashboardService(DashboardServiceParams{Stats: &fakeDashboardStats{err: errors.New("db down")}})

	_, _, err := svc.Admin(context.Background())
	require.Error(t, err)
}
