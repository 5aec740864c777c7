package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/models"
)

type statsRepository interface {
	TotalSpentByUser(ctx context.Context, userID string) (decimal.Decimal, error)
	SpentByUserBetween(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error)
	TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	UniqueUsersBetween(ctx context.Context, from, to time.Time) (int, error)
	OpenIssuesCount(ctx context.Context) (int, error)
	IssuesCountByUser(ctx context.Context, userID string) (int, error)
	MostOrderedItemByUser(ctx context.Context, userID string) (*models.MostOrderedItem, error)
}

// StatsService computes the scalar dashboard metrics. Calendar windows
// (today, this month) are derived from an injectable clock in the mess's
// configured timezone, so a shared hostel sees day boundaries at local
// midnight regardless of where the server runs.
type StatsService struct {
	repo    statsRepository
	metrics *MetricsService
	logger  *zap.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewStatsService constructs a StatsService. A nil location defaults to UTC.
func NewStatsService(repo statsRepository, metrics *MetricsService, loc *time.Location, logger *zap.Logger) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, metrics: metrics, logger: logger, loc: loc, now: time.Now}
}

// observeQuery feeds the db timing instrumentation; successful reads only.
func (s *StatsService) observeQuery(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

// ChangePercent computes a period-over-period percentage change. A zero
// previous total substitutes a denominator of 1 instead of reporting an
// undefined ratio; a jump from 0 to 50 reads as +5000. Callers round for
// display, the full precision is kept here.
func ChangePercent(previous, current decimal.Decimal) decimal.Decimal {
	denom := previous
	if previous.IsZero() {
		denom = decimal.NewFromInt(1)
	}
	return current.Sub(previous).Div(denom).Mul(decimal.NewFromInt(100))
}

// dayWindow returns [local midnight, next local midnight) shifted by
// offset days from today.
func (s *StatsService) dayWindow(offset int) (time.Time, time.Time) {
	now := s.now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, offset)
	return start, start.AddDate(0, 0, 1)
}

// monthWindow returns [1st of month 00:00, 1st of next month 00:00)
// shifted by offset calendar months.
func (s *StatsService) monthWindow(offset int) (time.Time, time.Time) {
	now := s.now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc).AddDate(0, offset, 0)
	return start, start.AddDate(0, 1, 0)
}

// TotalSpent returns the all-time spend for one user.
func (s *StatsService) TotalSpent(ctx context.Context, userID string) (decimal.Decimal, error) {
	start := time.Now()
	total, err := s.repo.TotalSpentByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	s.observeQuery("stats_total_spent", start)
	return total, nil
}

// MonthlySpent returns one user's spend in the current calendar month.
func (s *StatsService) MonthlySpent(ctx context.Context, userID string) (decimal.Decimal, error) {
	from, to := s.monthWindow(0)
	start := time.Now()
	total, err := s.repo.SpentByUserBetween(ctx, userID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	s.observeQuery("stats_monthly_spent", start)
	return total, nil
}

// MonthlyChangeByUser compares one user's spend this calendar month against
// the previous calendar month.
func (s *StatsService) MonthlyChangeByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	prevFrom, prevTo := s.monthWindow(-1)
	start := time.Now()
	previous, err := s.repo.SpentByUserBetween(ctx, userID, prevFrom, prevTo)
	if err != nil {
		return decimal.Zero, err
	}
	curFrom, curTo := s.monthWindow(0)
	current, err := s.repo.SpentByUserBetween(ctx, userID, curFrom, curTo)
	if err != nil {
		return decimal.Zero, err
	}
	s.observeQuery("stats_monthly_change_user", start)
	return ChangePercent(previous, current), nil
}

// TodaysTotal returns the mess-wide order amount for today.
func (s *StatsService) TodaysTotal(ctx context.Context) (decimal.Decimal, error) {
	from, to := s.dayWindow(0)
	start := time.Now()
	total, err := s.repo.TotalBetween(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	s.observeQuery("stats_todays_total", start)
	return total, nil
}

// MonthlyTotal returns the mess-wide order amount for the current
// calendar month.
func (s *StatsService) MonthlyTotal(ctx context.Context) (decimal.Decimal, error) {
	from, to := s.monthWindow(0)
	start := time.Now()
	total, err := s.repo.TotalBetween(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	s.observeQuery("stats_monthly_total", start)
	return total, nil
}

// DailyChange compares today's mess-wide total against yesterday's.
func (s *StatsService) DailyChange(ctx context.Context) (decimal.Decimal, error) {
	prevFrom, prevTo := s.dayWindow(-1)
	start := time.Now()
	previous, err := s.repo.TotalBetween(ctx, prevFrom, prevTo)
	if err != nil {
		return decimal.Zero, err
	}
	curFrom, curTo := s.dayWindow(0)
	current, err := s.repo.TotalBetween(ctx, curFrom, curTo)
	if err != nil {
		return decimal.Zero, err
	}
	s.observeQuery("stats_daily_change", start)
	return ChangePercent(previous, current), nil
}

// MonthlyChange compares this calendar month's mess-wide total against
// the previous month's.
func (s *StatsService) MonthlyChange(ctx context.Context) (decimal.Decimal, error) {
	prevFrom, prevTo := s.monthWindow(-1)
	start := time.Now()
	previous, err := s.repo.TotalBetween(ctx, prevFrom, prevTo)
	if err != nil {
		return decimal.Zero, err
	}
	curFrom, curTo := s.monthWindow(0)
	current, err := s.repo.TotalBetween(ctx, curFrom, curTo)
	if err != nil {
		return decimal.Zero, err
	}
	s.observeQuery("stats_monthly_change", start)
	return ChangePercent(previous, current), nil
}

// UniqueUsersToday counts distinct users who ordered today.
func (s *StatsService) UniqueUsersToday(ctx context.Context) (int, error) {
	from, to := s.dayWindow(0)
	start := time.Now()
	count, err := s.repo.UniqueUsersBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	s.observeQuery("stats_unique_users", start)
	return count, nil
}

// OpenIssues counts unresolved issues across the mess.
func (s *StatsService) OpenIssues(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := s.repo.OpenIssuesCount(ctx)
	if err != nil {
		return 0, err
	}
	s.observeQuery("stats_open_issues", start)
	return count, nil
}

// IssuesCount counts all issues reported by one user.
func (s *StatsService) IssuesCount(ctx context.Context, userID string) (int, error) {
	start := time.Now()
	count, err := s.repo.IssuesCountByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.observeQuery("stats_user_issues", start)
	return count, nil
}

// MostOrderedItem returns the user's top menu item by summed spend, or nil
// when the user has never ordered.
func (s *StatsService) MostOrderedItem(ctx context.Context, userID string) (*models.MostOrderedItem, error) {
	start := time.Now()
	item, err := s.repo.MostOrderedItemByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.observeQuery("stats_most_ordered", start)
	return item, nil
}
