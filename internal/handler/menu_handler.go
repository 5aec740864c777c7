package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelhub/mess-api/internal/models"
	"github.com/hostelhub/mess-api/internal/service"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
	"github.com/hostelhub/mess-api/pkg/response"
)

// MenuHandler wires the weekly menu endpoints.
type MenuHandler struct {
	service *service.MenuService
}

// NewMenuHandler creates a new handler.
func NewMenuHandler(svc *service.MenuService) *MenuHandler {
	return &MenuHandler{service: svc}
}

// List godoc
// @Summary List menu items
// @Tags Menus
// @Produce json
// @Param day query string false "Weekday filter"
// @Param meal_time query string false "Breakfast, Lunch, Snacks or Dinner"
// @Param type query string false "Veg, Non-veg or Jain"
// @Success 200 {object} response.Envelope
// @Router /menus [get]
func (h *MenuHandler) List(c *gin.Context) {
	filter := models.MenuFilter{Day: c.Query("day")}
	if v := c.Query("meal_time"); v != "" {
		mt := models.MealTime(v)
		filter.MealTime = &mt
	}
	if v := c.Query("type"); v != "" {
		mt := models.MenuType(v)
		filter.Type = &mt
	}

	menus, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, menus, nil)
}

// Get godoc
// @Summary Get a menu item
// @Tags Menus
// @Produce json
// @Param id path string true "Menu ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /menus/{id} [get]
func (h *MenuHandler) Get(c *gin.Context) {
	menu, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, menu, nil)
}

// Create godoc
// @Summary Add a menu item
// @Tags Menus
// @Accept json
// @Produce json
// @Param payload body service.MenuRequest true "Menu payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /menus [post]
func (h *MenuHandler) Create(c *gin.Context) {
	var req service.MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid menu payload"))
		return
	}

	menu, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, menu)
}

// Update godoc
// @Summary Update a menu item
// @Tags Menus
// @Accept json
// @Produce json
// @Param id path string true "Menu ID"
// @Param payload body service.MenuRequest true "Menu payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /menus/{id} [put]
func (h *MenuHandler) Update(c *gin.Context) {
	var req service.MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid menu payload"))
		return
	}

	menu, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, menu, nil)
}

// Delete godoc
// @Summary Remove a menu item
// @Tags Menus
// @Param id path string true "Menu ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /menus/{id} [delete]
func (h *MenuHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
