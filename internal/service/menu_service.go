package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/models"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
)

type menuRepository interface {
	FindByID(ctx context.Context, id string) (*models.Menu, error)
	List(ctx context.Context, filter models.MenuFilter) ([]models.Menu, error)
	Create(ctx context.Context, menu *models.Menu) error
	Update(ctx context.Context, menu *models.Menu) error
	Delete(ctx context.Context, id string) error
}

// MenuRequest is the create/update payload for a menu item.
type MenuRequest struct {
	Description string  `json:"description" validate:"required"`
	Type        string  `json:"type" validate:"required,oneof=Veg Non-veg Jain"`
	MealTime    string  `json:"meal_time" validate:"required,oneof=Breakfast Lunch Snacks Dinner"`
	Day         string  `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Price       string  `json:"price" validate:"required"`
	Image       *string `json:"image,omitempty"`
}

// MenuService manages the weekly menu. Menu mutations invalidate dashboard
// caches because the chart joins orders against menu serving slots.
type MenuService struct {
	repo      menuRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMenuService constructs a MenuService.
func NewMenuService(repo menuRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *MenuService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns a single menu item.
func (s *MenuService) Get(ctx context.Context, id string) (*models.Menu, error) {
	menu, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "menu item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menu item")
	}
	return menu, nil
}

// List returns menu items for the requested filter.
func (s *MenuService) List(ctx context.Context, filter models.MenuFilter) ([]models.Menu, error) {
	menus, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list menus")
	}
	return menus, nil
}

// Create publishes a new menu item.
func (s *MenuService) Create(ctx context.Context, req MenuRequest) (*models.Menu, error) {
	menu, err := s.buildMenu(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, menu); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create menu item")
	}
	s.invalidateDashboards(ctx)
	return menu, nil
}

// Update replaces mutable fields of a menu item.
func (s *MenuService) Update(ctx context.Context, id string, req MenuRequest) (*models.Menu, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.buildMenu(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update menu item")
	}
	s.invalidateDashboards(ctx)
	return updated, nil
}

// Delete removes a menu item.
func (s *MenuService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete menu item")
	}
	s.invalidateDashboards(ctx)
	return nil
}

func (s *MenuService) buildMenu(req MenuRequest) (*models.Menu, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid menu payload")
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "price must be a non-negative decimal")
	}
	return &models.Menu{
		Description: req.Description,
		Type:        models.MenuType(req.Type),
		MealTime:    models.MealTime(req.MealTime),
		Day:         req.Day,
		Price:       price,
		Image:       req.Image,
	}, nil
}

func (s *MenuService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
