package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hostelhub/mess-api/internal/models"
	"github.com/hostelhub/mess-api/pkg/export"
)

type exportOrderLister interface {
	ListWithMenu(ctx context.Context, filter models.OrderFilter) ([]models.OrderWithMenu, int, error)
}

type exportMenuLister interface {
	List(ctx context.Context, filter models.MenuFilter) ([]models.Menu, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the orders ledger as CSV and the weekly menu as a
// printable PDF table.
type ExportService struct {
	orders exportOrderLister
	menus  exportMenuLister
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Orders   exportOrderLister
	Menus    exportMenuLister
	CSV      csvRenderer
	PDF      pdfRenderer
	Logger   *zap.Logger
	Location *time.Location
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{
		orders: params.Orders,
		menus:  params.Menus,
		csv:    csv,
		pdf:    pdf,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
}

// OrdersCSV renders the filtered orders ledger. Pagination on the filter
// is ignored; the export covers every matching row.
func (s *ExportService) OrdersCSV(ctx context.Context, filter models.OrderFilter) (*ExportFile, error) {
	filter.Page = 1
	filter.PageSize = 100
	var rows []models.OrderWithMenu
	for {
		batch, total, err := s.orders.ListWithMenu(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list orders for export: %w", err)
		}
		rows = append(rows, batch...)
		if len(rows) >= total || len(batch) == 0 {
			break
		}
		filter.Page++
	}

	dataset := export.Dataset{
		Headers: []string{"order_id", "user_id", "menu", "meal_time", "order_time", "quantity", "status", "payment_status", "payment_method", "total_amount"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"order_id":       row.ID,
			"user_id":        row.UserID,
			"menu":           row.MenuDescription,
			"meal_time":      string(row.MealTime),
			"order_time":     row.OrderTime.In(s.loc).Format(time.RFC3339),
			"quantity":       fmt.Sprintf("%d", row.Quantity),
			"status":         string(row.Status),
			"payment_status": string(row.PaymentStatus),
			"payment_method": string(row.PaymentMethod),
			"total_amount":   row.TotalAmount.StringFixed(2),
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, fmt.Errorf("render orders csv: %w", err)
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("orders-%s.csv", s.now().In(s.loc).Format("2006-01-02")),
		ContentType: "text/csv",
		Payload:     payload,
	}, nil
}

// WeeklyMenuPDF renders the full weekly menu grouped by day and slot.
func (s *ExportService) WeeklyMenuPDF(ctx context.Context) (*ExportFile, error) {
	menus, err := s.menus.List(ctx, models.MenuFilter{})
	if err != nil {
		return nil, fmt.Errorf("list menus for export: %w", err)
	}

	dataset := export.Dataset{
		Headers: []string{"day", "meal_time", "description", "type", "price"},
	}
	for _, menu := range menus {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"day":         menu.Day,
			"meal_time":   string(menu.MealTime),
			"description": menu.Description,
			"type":        string(menu.Type),
			"price":       menu.Price.StringFixed(2),
		})
	}

	payload, err := s.pdf.Render(dataset, "Weekly Mess Menu")
	if err != nil {
		return nil, fmt.Errorf("render menu pdf: %w", err)
	}
	return &ExportFile{
		Filename:    "weekly-menu.pdf",
		ContentType: "application/pdf",
		Payload:     payload,
	}, nil
}
