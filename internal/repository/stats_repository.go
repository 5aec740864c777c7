package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/hostelhub/mess-api/internal/models"
)

// StatsRepository exposes the scalar aggregate queries behind the dashboard
// cards. Every method is a pure read; sums coalesce to zero so callers never
// see NULL for an empty result set.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository instantiates the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// TotalSpentByUser returns the all-time sum of order amounts for a user.
func (r *StatsRepository) TotalSpentByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE user_id = $1`
	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return decimal.Zero, fmt.Errorf("total spent by user: %w", err)
	}
	return total, nil
}

// SpentByUserBetween returns the sum of order amounts for a user with
// order_time in [from, to).
func (r *StatsRepository) SpentByUserBetween(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE user_id = $1 AND order_time >= $2 AND order_time < $3`
	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, userID, from, to); err != nil {
		return decimal.Zero, fmt.Errorf("spent by user between: %w", err)
	}
	return total, nil
}

// TotalBetween returns the mess-wide sum of order amounts with order_time
// in [from, to).
func (r *StatsRepository) TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE order_time >= $1 AND order_time < $2`
	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, from, to); err != nil {
		return decimal.Zero, fmt.Errorf("total between: %w", err)
	}
	return total, nil
}

// UniqueUsersBetween counts distinct ordering users with order_time in
// [from, to).
func (r *StatsRepository) UniqueUsersBetween(ctx context.Context, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(DISTINCT user_id) FROM orders WHERE order_time >= $1 AND order_time < $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, fmt.Errorf("unique users between: %w", err)
	}
	return count, nil
}

// OpenIssuesCount counts issues currently in the Open state.
func (r *StatsRepository) OpenIssuesCount(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM issues WHERE status = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.IssueOpen); err != nil {
		return 0, fmt.Errorf("open issues count: %w", err)
	}
	return count, nil
}

// IssuesCountByUser counts all issues reported by one user.
func (r *StatsRepository) IssuesCountByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM issues WHERE user_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("issues count by user: %w", err)
	}
	return count, nil
}

// MostOrderedItemByUser returns the menu item whose orders for the user sum
// to the highest amount. Ties break on the lower menu id so the result is
// deterministic. Returns nil when the user has no orders.
func (r *StatsRepository) MostOrderedItemByUser(ctx context.Context, userID string) (*models.MostOrderedItem, error) {
	const query = `SELECT m.id AS menu_id, m.description, SUM(o.total_amount) AS total_amount
		FROM orders o
		JOIN menus m ON m.id = o.menu_id
		WHERE o.user_id = $1
		GROUP BY m.id, m.description
		ORDER BY SUM(o.total_amount) DESC, m.id ASC
		LIMIT 1`
	var item models.MostOrderedItem
	if err := r.db.GetContext(ctx, &item, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("most ordered item by user: %w", err)
	}
	return &item, nil
}

// MealTimeRows returns the joined order rows feeding the meal-time chart:
// order_time, quantity and the menu's serving slot for every order with
// order_time in [from, to). Cancelled and unpaid orders are included.
func (r *StatsRepository) MealTimeRows(ctx context.Context, userID string, from, to time.Time) ([]models.MealTimeOrderRow, error) {
	const query = `SELECT o.order_time, o.quantity, m.meal_time
		FROM orders o
		LEFT JOIN menus m ON m.id = o.menu_id
		WHERE o.user_id = $1 AND o.order_time >= $2 AND o.order_time < $3
		ORDER BY o.order_time ASC`
	var rows []models.MealTimeOrderRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("meal time rows: %w", err)
	}
	return rows, nil
}

// MealTimeRowsGlobal is the mess-wide variant of MealTimeRows.
func (r *StatsRepository) MealTimeRowsGlobal(ctx context.Context, from, to time.Time) ([]models.MealTimeOrderRow, error) {
	const query = `SELECT o.order_time, o.quantity, m.meal_time
		FROM orders o
		LEFT JOIN menus m ON m.id = o.menu_id
		WHERE o.order_time >= $1 AND o.order_time < $2
		ORDER BY o.order_time ASC`
	var rows []models.MealTimeOrderRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("meal time rows global: %w", err)
	}
	return rows, nil
}
