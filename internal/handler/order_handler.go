package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hostelhub/mess-api/internal/models"
	"github.com/hostelhub/mess-api/internal/service"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
	"github.com/hostelhub/mess-api/pkg/response"
)

// OrderHandler wires the meal order endpoints.
type OrderHandler struct {
	service *service.OrderService
}

// NewOrderHandler creates a new handler.
func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{service: svc}
}

// Place godoc
// @Summary Place a meal order
// @Tags Orders
// @Accept json
// @Produce json
// @Param payload body service.CreateOrderRequest true "Order payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid order payload"))
		return
	}

	order, err := h.service.Place(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, order)
}

// List godoc
// @Summary List orders
// @Description Students see their own orders; admins see everyone's.
// @Tags Orders
// @Produce json
// @Param status query string false "Order status filter"
// @Param date_from query string false "RFC3339 lower bound"
// @Param date_to query string false "RFC3339 upper bound"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} response.Envelope
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter, err := orderFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims.Role != models.RoleAdmin {
		filter.UserID = claims.UserID
	}

	orders, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, orders, pagination)
}

// Get godoc
// @Summary Get a single order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	order, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, order, nil)
}

// UpdateStatus godoc
// @Summary Update order fulfilment and payment state
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param payload body service.UpdateOrderStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, order, nil)
}

// Cancel godoc
// @Summary Cancel an order
// @Description Students may cancel only pending orders; admins may cancel any.
// @Tags Orders
// @Param id path string true "Order ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /orders/{id} [delete]
func (h *OrderHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func orderFilterFromQuery(c *gin.Context) (models.OrderFilter, error) {
	filter := models.OrderFilter{Page: 1, PageSize: 20}
	if v := c.Query("status"); v != "" {
		status := models.OrderStatus(v)
		filter.Status = &status
	}
	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "date_from must be RFC3339")
		}
		filter.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "date_to must be RFC3339")
		}
		filter.DateTo = &t
	}
	if v := c.Query("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if v := c.Query("page_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 && size <= 100 {
			filter.PageSize = size
		}
	}
	return filter, nil
}
