package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hostelhub/mess-api/internal/models"
)

// OrderRepository provides database access for meal orders.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, user_id, menu_id, order_time, quantity, special_request, status, payment_status, payment_method, total_amount`

// FindByID returns an order by identifier.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 LIMIT 1`
	var order models.Order
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find order by id: %w", err)
	}
	return &order, nil
}

// ListWithMenu returns orders joined with their menu item, filtered and
// paginated, newest first, with the total match count.
func (r *OrderRepository) ListWithMenu(ctx context.Context, filter models.OrderFilter) ([]models.OrderWithMenu, int, error) {
	baseQuery := ` FROM orders o JOIN menus m ON m.id = o.menu_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("o.order_time >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("o.order_time < $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	selectCols := `o.id, o.user_id, o.menu_id, o.order_time, o.quantity, o.special_request, o.status, o.payment_status, o.payment_method, o.total_amount,
		m.description AS menu_description, m.type AS menu_type, m.meal_time, m.day AS menu_day`
	listQuery := fmt.Sprintf("SELECT %s%s ORDER BY o.order_time DESC LIMIT %d OFFSET %d", selectCols, baseQuery, pageSize, offset)

	var orders []models.OrderWithMenu
	if err := r.db.SelectContext(ctx, &orders, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*)%s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	return orders, total, nil
}

// Create inserts a new order.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.OrderTime.IsZero() {
		order.OrderTime = time.Now().UTC()
	}

	const query = `INSERT INTO orders (id, user_id, menu_id, order_time, quantity, special_request, status, payment_status, payment_method, total_amount) VALUES (:id, :user_id, :menu_id, :order_time, :quantity, :special_request, :status, :payment_status, :payment_method, :total_amount)`
	if _, err := r.db.NamedExecContext(ctx, query, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// UpdateStatus sets the fulfilment and payment state of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, payment models.PaymentStatus) error {
	const query = `UPDATE orders SET status = $2, payment_status = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, payment); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

// Delete removes an order.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM orders WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}
