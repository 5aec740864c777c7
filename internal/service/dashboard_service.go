package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/dto"
	"github.com/hostelhub/mess-api/internal/models"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
)

type dashboardStatsProvider interface {
	TotalSpent(ctx context.Context, userID string) (decimal.Decimal, error)
	MonthlySpent(ctx context.Context, userID string) (decimal.Decimal, error)
	MonthlyChangeByUser(ctx context.Context, userID string) (decimal.Decimal, error)
	TodaysTotal(ctx context.Context) (decimal.Decimal, error)
	MonthlyTotal(ctx context.Context) (decimal.Decimal, error)
	DailyChange(ctx context.Context) (decimal.Decimal, error)
	MonthlyChange(ctx context.Context) (decimal.Decimal, error)
	UniqueUsersToday(ctx context.Context) (int, error)
	OpenIssues(ctx context.Context) (int, error)
	IssuesCount(ctx context.Context, userID string) (int, error)
	MostOrderedItem(ctx context.Context, userID string) (*models.MostOrderedItem, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the metric cards for the student and admin
// panels. Each metric is an independent read; the composed payload is
// cached briefly so a dashboard refresh does not refire every aggregate.
type DashboardService struct {
	stats  dashboardStatsProvider
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Stats  dashboardStatsProvider
	Cache  *CacheService
	Logger *zap.Logger
	Config DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		stats:  params.Stats,
		cache:  params.Cache,
		logger: logger,
		now:    time.Now,
		cfg:    cfg,
	}
}

// Student returns the personal dashboard for one user and indicates cache
// utilisation.
func (s *DashboardService) Student(ctx context.Context, userID string) (*dto.StudentDashboardResponse, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	cacheKey := fmt.Sprintf("dash:student:%s", userID)
	if s.cache != nil {
		var cached dto.StudentDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	summary, err := s.composeStudent(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// Admin returns the mess-wide dashboard and indicates cache utilisation.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, bool, error) {
	const cacheKey = "dash:admin"
	if s.cache != nil {
		var cached dto.AdminDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	summary, err := s.composeAdmin(ctx)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

func (s *DashboardService) composeStudent(ctx context.Context, userID string) (*dto.StudentDashboardResponse, error) {
	totalSpent, err := s.stats.TotalSpent(ctx, userID)
	if err != nil {
		return nil, err
	}
	monthlySpent, err := s.stats.MonthlySpent(ctx, userID)
	if err != nil {
		return nil, err
	}
	monthlyChange, err := s.stats.MonthlyChangeByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	topItem, err := s.stats.MostOrderedItem(ctx, userID)
	if err != nil {
		return nil, err
	}
	issuesCount, err := s.stats.IssuesCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.StudentDashboardResponse{
		StudentDashboard: models.StudentDashboard{
			TotalSpent:           totalSpent,
			MonthlySpent:         monthlySpent,
			MonthlyChangePercent: monthlyChange,
			MostOrderedItem:      topItem,
			IssuesCount:          issuesCount,
		},
		GeneratedAt: s.now().UTC(),
	}, nil
}

func (s *DashboardService) composeAdmin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	todaysTotal, err := s.stats.TodaysTotal(ctx)
	if err != nil {
		return nil, err
	}
	monthlyTotal, err := s.stats.MonthlyTotal(ctx)
	if err != nil {
		return nil, err
	}
	dailyChange, err := s.stats.DailyChange(ctx)
	if err != nil {
		return nil, err
	}
	monthlyChange, err := s.stats.MonthlyChange(ctx)
	if err != nil {
		return nil, err
	}
	uniqueUsers, err := s.stats.UniqueUsersToday(ctx)
	if err != nil {
		return nil, err
	}
	openIssues, err := s.stats.OpenIssues(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.AdminDashboardResponse{
		AdminDashboard: models.AdminDashboard{
			TodaysTotal:          todaysTotal,
			MonthlyTotal:         monthlyTotal,
			DailyChangePercent:   dailyChange,
			MonthlyChangePercent: monthlyChange,
			UniqueUsersToday:     uniqueUsers,
			OpenIssues:           openIssues,
		},
		GeneratedAt: s.now().UTC(),
	}, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
