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

// MenuRepository provides database access for menu items.
type MenuRepository struct {
	db *sqlx.DB
}

// NewMenuRepository creates a new instance of MenuRepository.
func NewMenuRepository(db *sqlx.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

const menuColumns = `id, description, type, meal_time, day, price, image, created_at, updated_at`

// FindByID returns a menu item by identifier.
func (r *MenuRepository) FindByID(ctx context.Context, id string) (*models.Menu, error) {
	query := `SELECT ` + menuColumns + ` FROM menus WHERE id = $1 LIMIT 1`
	var menu models.Menu
	if err := r.db.GetContext(ctx, &menu, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find menu by id: %w", err)
	}
	return &menu, nil
}

// List returns menu items matching the filter, ordered for weekly display.
func (r *MenuRepository) List(ctx context.Context, filter models.MenuFilter) ([]models.Menu, error) {
	baseQuery := `SELECT ` + menuColumns + ` FROM menus WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, filter.Day)
	}
	if filter.MealTime != nil {
		conditions = append(conditions, fmt.Sprintf("meal_time = $%d", len(args)+1))
		args = append(args, *filter.MealTime)
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, *filter.Type)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	baseQuery += ` ORDER BY
		CASE day
			WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2 WHEN 'Wednesday' THEN 3
			WHEN 'Thursday' THEN 4 WHEN 'Friday' THEN 5 WHEN 'Saturday' THEN 6
			ELSE 7 END,
		CASE meal_time
			WHEN 'Breakfast' THEN 1 WHEN 'Lunch' THEN 2 WHEN 'Snacks' THEN 3
			ELSE 4 END`

	var menus []models.Menu
	if err := r.db.SelectContext(ctx, &menus, baseQuery, args...); err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return menus, nil
}

// Create inserts a new menu item.
func (r *MenuRepository) Create(ctx context.Context, menu *models.Menu) error {
	if menu.ID == "" {
		menu.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if menu.CreatedAt.IsZero() {
		menu.CreatedAt = now
	}
	menu.UpdatedAt = now

	const query = `INSERT INTO menus (id, description, type, meal_time, day, price, image, created_at, updated_at) VALUES (:id, :description, :type, :meal_time, :day, :price, :image, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, menu); err != nil {
		return fmt.Errorf("create menu: %w", err)
	}
	return nil
}

// Update updates mutable fields of a menu item.
func (r *MenuRepository) Update(ctx context.Context, menu *models.Menu) error {
	menu.UpdatedAt = time.Now().UTC()
	const query = `UPDATE menus SET description = :description, type = :type, meal_time = :meal_time, day = :day, price = :price, image = :image, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, menu); err != nil {
		return fmt.Errorf("update menu: %w", err)
	}
	return nil
}

// Delete removes a menu item.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM menus WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	return nil
}
