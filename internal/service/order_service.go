package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/models"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
)

type orderRepository interface {
	FindByID(ctx context.Context, id string) (*models.Order, error)
	ListWithMenu(ctx context.Context, filter models.OrderFilter) ([]models.OrderWithMenu, int, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, payment models.PaymentStatus) error
	Delete(ctx context.Context, id string) error
}

type orderMenuReader interface {
	FindByID(ctx context.Context, id string) (*models.Menu, error)
}

// CreateOrderRequest is the order placement payload.
type CreateOrderRequest struct {
	MenuID         string  `json:"menu_id" validate:"required"`
	Quantity       int     `json:"quantity" validate:"required,min=1,max=20"`
	SpecialRequest *string `json:"special_request,omitempty"`
	PaymentMethod  string  `json:"payment_method" validate:"required,oneof=Cash Card Online"`
}

// UpdateOrderStatusRequest mutates fulfilment and payment state.
type UpdateOrderStatusRequest struct {
	Status        string `json:"status" validate:"required,oneof=Pending Confirmed Delivered Cancelled"`
	PaymentStatus string `json:"payment_status" validate:"required,oneof=Paid Unpaid Refunded"`
}

// OrderService manages meal orders. The order's total is fixed at creation
// as menu price times quantity; later price edits do not reprice past
// orders.
type OrderService struct {
	repo      orderRepository
	menus     orderMenuReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// OrderServiceParams groups constructor dependencies.
type OrderServiceParams struct {
	Repo      orderRepository
	Menus     orderMenuReader
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewOrderService constructs an OrderService.
func NewOrderService(params OrderServiceParams) *OrderService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		repo:      params.Repo,
		menus:     params.Menus,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Place creates an order for the given user.
func (s *OrderService) Place(ctx context.Context, userID string, req CreateOrderRequest) (*models.Order, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid order payload")
	}

	menu, err := s.menus.FindByID(ctx, req.MenuID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "menu item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menu item")
	}

	order := &models.Order{
		UserID:         userID,
		MenuID:         menu.ID,
		OrderTime:      s.now().UTC(),
		Quantity:       req.Quantity,
		SpecialRequest: req.SpecialRequest,
		Status:         models.OrderPending,
		PaymentStatus:  models.PaymentUnpaid,
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		TotalAmount:    menu.Price.Mul(decimal.NewFromInt(int64(req.Quantity))),
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create order")
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
	}
	s.invalidateDashboards(ctx)
	return order, nil
}

// List returns orders joined with menu details plus pagination metadata.
func (s *OrderService) List(ctx context.Context, filter models.OrderFilter) ([]models.OrderWithMenu, *models.Pagination, error) {
	orders, total, err := s.repo.ListWithMenu(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list orders")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return orders, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a single order. Students only see their own orders.
func (s *OrderService) Get(ctx context.Context, id, requesterID string, role models.UserRole) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "order not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load order")
	}
	if role != models.RoleAdmin && order.UserID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "order belongs to another user")
	}
	return order, nil
}

// UpdateStatus mutates fulfilment and payment state, admin only.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, req UpdateOrderStatusRequest) (*models.Order, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "order not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load order")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.OrderStatus(req.Status), models.PaymentStatus(req.PaymentStatus)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update order status")
	}
	order.Status = models.OrderStatus(req.Status)
	order.PaymentStatus = models.PaymentStatus(req.PaymentStatus)
	s.invalidateDashboards(ctx)
	return order, nil
}

// Cancel marks an order cancelled. Students may cancel only their own
// pending orders. Cancelled rows still feed the demand chart.
func (s *OrderService) Cancel(ctx context.Context, id, requesterID string, role models.UserRole) error {
	order, err := s.Get(ctx, id, requesterID, role)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin && order.Status != models.OrderPending {
		return appErrors.Clone(appErrors.ErrForbidden, "only pending orders can be cancelled")
	}
	payment := order.PaymentStatus
	if payment == models.PaymentPaid {
		payment = models.PaymentRefunded
	}
	if err := s.repo.UpdateStatus(ctx, id, models.OrderCancelled, payment); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel order")
	}
	s.invalidateDashboards(ctx)
	return nil
}

func (s *OrderService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
