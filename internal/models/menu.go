package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuType is the dietary category of a menu item.
type MenuType string

const (
	MenuVeg    MenuType = "Veg"
	MenuNonVeg MenuType = "Non-veg"
	MenuJain   MenuType = "Jain"
)

// MealTime is the serving slot of a menu item, and the categorical axis
// used when bucketing orders for the dashboard chart.
type MealTime string

const (
	MealBreakfast MealTime = "Breakfast"
	MealLunch     MealTime = "Lunch"
	MealSnacks    MealTime = "Snacks"
	MealDinner    MealTime = "Dinner"
)

// MealTimes lists all serving slots in serving order.
var MealTimes = []MealTime{MealBreakfast, MealLunch, MealSnacks, MealDinner}

// Days lists the weekly menu rotation in calendar order.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Menu represents a published menu item.
type Menu struct {
	ID          string          `db:"id" json:"id"`
	Description string          `db:"description" json:"description"`
	Type        MenuType        `db:"type" json:"type"`
	MealTime    MealTime        `db:"meal_time" json:"meal_time"`
	Day         string          `db:"day" json:"day"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Image       *string         `db:"image" json:"image,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// MenuFilter captures optional listing criteria.
type MenuFilter struct {
	Day      string
	MealTime *MealTime
	Type     *MenuType
}
