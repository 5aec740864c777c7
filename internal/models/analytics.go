package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeWindow is a supported lookback range for the meal-time chart.
type TimeWindow string

const (
	Window7d  TimeWindow = "7d"
	Window30d TimeWindow = "30d"
	Window90d TimeWindow = "90d"
)

// Days returns the number of calendar days in the window, or 0 for an
// unknown window.
func (w TimeWindow) Days() int {
	switch w {
	case Window7d:
		return 7
	case Window30d:
		return 30
	case Window90d:
		return 90
	default:
		return 0
	}
}

// MealTimeBucket is one day of the dashboard chart: total quantities
// ordered per serving slot. Days with no orders carry all zeroes.
type MealTimeBucket struct {
	Date      string `json:"date"`
	Breakfast int    `json:"Breakfast"`
	Lunch     int    `json:"Lunch"`
	Snacks    int    `json:"Snacks"`
	Dinner    int    `json:"Dinner"`
}

// MealTimeOrderRow is the raw joined row the bucketer consumes.
type MealTimeOrderRow struct {
	OrderTime time.Time `db:"order_time"`
	Quantity  int       `db:"quantity"`
	MealTime  *MealTime `db:"meal_time"`
}

// MostOrderedItem is the menu item with the highest summed order amount
// for one user. Ranking is by spend, not order count.
type MostOrderedItem struct {
	MenuID      string          `db:"menu_id" json:"menu_id"`
	Description string          `db:"description" json:"description"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
}

// StudentDashboard is the personal metric panel for a student.
type StudentDashboard struct {
	TotalSpent           decimal.Decimal  `json:"total_spent"`
	MonthlySpent         decimal.Decimal  `json:"monthly_spent"`
	MonthlyChangePercent decimal.Decimal  `json:"monthly_change_percent"`
	MostOrderedItem      *MostOrderedItem `json:"most_ordered_item"`
	IssuesCount          int              `json:"issues_count"`
}

// AdminDashboard is the mess-wide metric panel for admins.
type AdminDashboard struct {
	TodaysTotal          decimal.Decimal `json:"todays_total"`
	MonthlyTotal         decimal.Decimal `json:"monthly_total"`
	DailyChangePercent   decimal.Decimal `json:"daily_change_percent"`
	MonthlyChangePercent decimal.Decimal `json:"monthly_change_percent"`
	UniqueUsersToday     int             `json:"unique_users_today"`
	OpenIssues           int             `json:"open_issues"`
}
