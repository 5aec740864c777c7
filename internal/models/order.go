package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// PaymentStatus tracks the settlement state of an order.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "Paid"
	PaymentUnpaid   PaymentStatus = "Unpaid"
	PaymentRefunded PaymentStatus = "Refunded"
)

// PaymentMethod is how the student intends to settle.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "Cash"
	PaymentCard   PaymentMethod = "Card"
	PaymentOnline PaymentMethod = "Online"
)

// Order represents a placed meal order. TotalAmount is derived once at
// creation time as menu price times quantity; the reporting layer never
// recomputes it.
type Order struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"user_id"`
	MenuID         string          `db:"menu_id" json:"menu_id"`
	OrderTime      time.Time       `db:"order_time" json:"order_time"`
	Quantity       int             `db:"quantity" json:"quantity"`
	SpecialRequest *string         `db:"special_request" json:"special_request,omitempty"`
	Status         OrderStatus     `db:"status" json:"status"`
	PaymentStatus  PaymentStatus   `db:"payment_status" json:"payment_status"`
	PaymentMethod  PaymentMethod   `db:"payment_method" json:"payment_method"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
}

// OrderWithMenu is an order row joined with the menu fields needed for
// display, charting and exports.
type OrderWithMenu struct {
	Order
	MenuDescription string   `db:"menu_description" json:"menu_description"`
	MenuType        MenuType `db:"menu_type" json:"menu_type"`
	MealTime        MealTime `db:"meal_time" json:"meal_time"`
	MenuDay         string   `db:"menu_day" json:"menu_day"`
}

// OrderFilter captures listing criteria for orders.
type OrderFilter struct {
	UserID   string
	Status   *OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}
