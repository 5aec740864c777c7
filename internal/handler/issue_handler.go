package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelhub/mess-api/internal/models"
	"github.com/hostelhub/mess-api/internal/service"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
	"github.com/hostelhub/mess-api/pkg/response"
)

// IssueHandler wires the issue reporting endpoints.
type IssueHandler struct {
	service *service.IssueService
}

// NewIssueHandler creates a new handler.
func NewIssueHandler(svc *service.IssueService) *IssueHandler {
	return &IssueHandler{service: svc}
}

// Report godoc
// @Summary Report a mess issue
// @Tags Issues
// @Accept json
// @Produce json
// @Param payload body service.CreateIssueRequest true "Issue payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /issues [post]
func (h *IssueHandler) Report(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid issue payload"))
		return
	}

	issue, err := h.service.Report(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, issue)
}

// List godoc
// @Summary List issues
// @Description Students see their own issues; admins see everyone's.
// @Tags Issues
// @Produce json
// @Param status query string false "Issue status filter"
// @Success 200 {object} response.Envelope
// @Router /issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.IssueFilter{}
	if v := c.Query("status"); v != "" {
		status := models.IssueStatus(v)
		filter.Status = &status
	}
	if claims.Role != models.RoleAdmin {
		filter.UserID = claims.UserID
	}

	issues, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, issues, nil)
}

// Get godoc
// @Summary Get a single issue
// @Tags Issues
// @Produce json
// @Param id path string true "Issue ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/{id} [get]
func (h *IssueHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	issue, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, issue, nil)
}

// UpdateStatus godoc
// @Summary Move an issue between handling states
// @Tags Issues
// @Accept json
// @Produce json
// @Param id path string true "Issue ID"
// @Param payload body service.UpdateIssueStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/{id}/status [patch]
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateIssueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	issue, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, issue, nil)
}

// Delete godoc
// @Summary Remove an issue
// @Tags Issues
// @Param id path string true "Issue ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/{id} [delete]
func (h *IssueHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
