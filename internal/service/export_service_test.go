package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/models"
)

type fakeExportOrders struct {
	rows []models.OrderWithMenu
}

func (f *fakeExportOrders) ListWithMenu(_ context.Context, filter models.OrderFilter) ([]models.OrderWithMenu, int, error) {
	if filter.Page > 1 {
		return nil, len(f.rows), nil
	}
	return f.rows, len(f.rows), nil
}

type fakeExportMenus struct {
	menus []models.Menu
}

func (f *fakeExportMenus) List(context.Context, models.MenuFilter) ([]models.Menu, error) {
	return f.menus, nil
}

func TestOrdersCSVExport(t *testing.T) {
	orders := &fakeExportOrders{rows: []models.OrderWithMenu{
		{
			Order: models.Order{
				ID:            "o1",
				UserID:        "u1",
				OrderTime:     time.Date(2024, 4, 18, 12, 30, 0, 0, time.UTC),
				Quantity:      2,
				Status:        models.OrderDelivered,
				PaymentStatus: models.PaymentPaid,
				PaymentMethod: models.PaymentCash,
				TotalAmount:   decimal.RequireFromString("91"),
			},
			MenuDescription: "Thali",
			MealTime:        models.MealLunch,
		},
	}}
	svc := NewExportService(ExportServiceParams{Orders: orders, Menus: &fakeExportMenus{}, Logger: zap.NewNop()})
	svc.now = func() time.Time { return time.Date(2024, 4, 18, 15, 0, 0, 0, time.UTC) }

	file, err := svc.OrdersCSV(context.Background(), models.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, "orders-2024-04-18.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	content := string(file.Payload)
	assert.True(t, strings.HasPrefix(content, "order_id,user_id,menu"))
	assert.Contains(t, content, "Thali")
	assert.Contains(t, content, "91.00")
	assert.Contains(t, content, "Lunch")
}

func TestWeeklyMenuPDFExport(t *testing.T) {
	menus := &fakeExportMenus{menus: []models.Menu{
		{Day: "Monday", MealTime: models.MealBreakfast, Description: "Poha", Type: models.MenuVeg, Price: decimal.RequireFromString("20")},
		{Day: "Monday", MealTime: models.MealLunch, Description: "Thali", Type: models.MenuVeg, Price: decimal.RequireFromString("45.50")},
	}}
	svc := NewExportService(ExportServiceParams{Orders: &fakeExportOrders{}, Menus: menus, Logger: zap.NewNop()})

	file, err := svc.WeeklyMenuPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "weekly-menu.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, len(file.Payload) > 0)
	assert.True(t, strings.HasPrefix(string(file.Payload), "%PDF"))
}
