package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelhub/mess-api/internal/service"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
	"github.com/hostelhub/mess-api/pkg/response"
)

// NoticeHandler wires the notice board endpoints.
type NoticeHandler struct {
	service *service.NoticeService
}

// NewNoticeHandler creates a new handler.
func NewNoticeHandler(svc *service.NoticeService) *NoticeHandler {
	return &NoticeHandler{service: svc}
}

// List godoc
// @Summary List active notices
// @Tags Notices
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notices [get]
func (h *NoticeHandler) List(c *gin.Context) {
	notices, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, notices, nil)
}

// Post godoc
// @Summary Post a notice
// @Tags Notices
// @Accept json
// @Produce json
// @Param payload body service.CreateNoticeRequest true "Notice payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notices [post]
func (h *NoticeHandler) Post(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notice payload"))
		return
	}

	notice, err := h.service.Post(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, notice)
}

// Delete godoc
// @Summary Remove a notice
// @Tags Notices
// @Param id path string true "Notice ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notices/{id} [delete]
func (h *NoticeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
