package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelhub/mess-api/internal/service"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
	"github.com/hostelhub/mess-api/pkg/response"
)

// ExportHandler serves CSV and PDF downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// OrdersCSV godoc
// @Summary Download the orders ledger as CSV
// @Tags Exports
// @Produce text/csv
// @Param status query string false "Order status filter"
// @Param date_from query string false "RFC3339 lower bound"
// @Param date_to query string false "RFC3339 upper bound"
// @Success 200 {file} file
// @Router /exports/orders.csv [get]
func (h *ExportHandler) OrdersCSV(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	filter, err := orderFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.service.OrdersCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	writeDownload(c, file)
}

// WeeklyMenuPDF godoc
// @Summary Download the weekly menu as PDF
// @Tags Exports
// @Produce application/pdf
// @Success 200 {file} file
// @Router /exports/menu.pdf [get]
func (h *ExportHandler) WeeklyMenuPDF(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	file, err := h.service.WeeklyMenuPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	writeDownload(c, file)
}

func writeDownload(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}
