package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/models"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
)

type fakeOrderRepo struct {
	orders  map[string]*models.Order
	created []*models.Order
	updated map[string][2]string
	listed  []models.OrderWithMenu
	total   int
	err     error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*models.Order{}, updated: map[string][2]string{}}
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id string) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	if order, ok := f.orders[id]; ok {
		return order, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOrderRepo) ListWithMenu(context.Context, models.OrderFilter) ([]models.OrderWithMenu, int, error) {
	return f.listed, f.total, f.err
}

func (f *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, order)
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status models.OrderStatus, payment models.PaymentStatus) error {
	f.updated[id] = [2]string{string(status), string(payment)}
	return nil
}

func (f *fakeOrderRepo) Delete(context.Context, string) error { return f.err }

type fakeMenuReader struct {
	menus map[string]*models.Menu
}

func (f *fakeMenuReader) FindByID(_ context.Context, id string) (*models.Menu, error) {
	if menu, ok := f.menus[id]; ok {
		return menu, nil
	}
	return nil, sql.ErrNoRows
}

func newOrderService(repo *fakeOrderRepo, menus *fakeMenuReader) *OrderService {
	return NewOrderService(OrderServiceParams{Repo: repo, Menus: menus, Logger: zap.NewNop()})
}

func TestPlaceOrderDerivesTotalAmount(t *testing.T) {
	repo := newFakeOrderRepo()
	menus := &fakeMenuReader{menus: map[string]*models.Menu{
		"m1": {ID: "m1", Description: "Thali", Price: decimal.RequireFromString("45.50"), MealTime: models.MealLunch},
	}}
	svc := newOrderService(repo, menus)
	svc.now = func() time.Time { return time.Date(2024, 4, 18, 12, 0, 0, 0, time.UTC) }

	order, err := svc.Place(context.Background(), "u1", CreateOrderRequest{MenuID: "m1", Quantity: 3, PaymentMethod: "Cash"})
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("136.50")), "got %s", order.TotalAmount)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
	require.Len(t, repo.created, 1)
}

func TestPlaceOrderUnknownMenu(t *testing.T) {
	svc := newOrderService(newFakeOrderRepo(), &fakeMenuReader{menus: map[string]*models.Menu{}})

	_, err := svc.Place(context.Background(), "u1", CreateOrderRequest{MenuID: "ghost", Quantity: 1, PaymentMethod: "Cash"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPlaceOrderRejectsZeroQuantity(t *testing.T) {
	svc := newOrderService(newFakeOrderRepo(), &fakeMenuReader{})

	_, err := svc.Place(context.Background(), "u1", CreateOrderRequest{MenuID: "m1", Quantity: 0, PaymentMethod: "Cash"})
	require.Error(t, err)
}

func TestGetOrderScopedToOwner(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.orders["o1"] = &models.Order{ID: "o1", UserID: "u1"}
	svc := newOrderService(repo, &fakeMenuReader{})

	_, err := svc.Get(context.Background(), "o1", "u2", models.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	order, err := svc.Get(context.Background(), "o1", "u2", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
}

func TestCancelPendingOrderRefundsPaid(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.orders["o1"] = &models.Order{ID: "o1", UserID: "u1", Status: models.OrderPending, PaymentStatus: models.PaymentPaid}
	svc := newOrderService(repo, &fakeMenuReader{})

	require.NoError(t, svc.Cancel(context.Background(), "o1", "u1", models.RoleStudent))
	assert.Equal(t, [2]string{"Cancelled", "Refunded"}, repo.updated["o1"])
}

func TestCancelConfirmedOrderForbiddenForStudent(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.orders["o1"] = &models.Order{ID: "o1", UserID: "u1", Status: models.OrderConfirmed, PaymentStatus: models.PaymentUnpaid}
	svc := newOrderService(repo, &fakeMenuReader{})

	err := svc.Cancel(context.Background(), "o1", "u1", models.RoleStudent)
	require.Error(t, err)

	require.NoError(t, svc.Cancel(context.Background(), "o1", "admin", models.RoleAdmin))
}

func TestUpdateOrderStatusValidatesEnums(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.orders["o1"] = &models.Order{ID: "o1", UserID: "u1"}
	svc := newOrderService(repo, &fakeMenuReader{})

	_, err := svc.UpdateStatus(context.Background(), "o1", UpdateOrderStatusRequest{Status: "Eaten", PaymentStatus: "Paid"})
	require.Error(t, err)

	order, err := svc.UpdateStatus(context.Background(), "o1", UpdateOrderStatusRequest{Status: "Delivered", PaymentStatus: "Paid"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, order.Status)
}
