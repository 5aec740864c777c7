package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelhub/mess-api/internal/service"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
	"github.com/hostelhub/mess-api/pkg/response"
)

// ImageHandler accepts image uploads and serves them back through
// signed URLs.
type ImageHandler struct {
	service *service.ImageService
}

// NewImageHandler creates a new handler.
func NewImageHandler(svc *service.ImageService) *ImageHandler {
	return &ImageHandler{service: svc}
}

// Upload godoc
// @Summary Upload a menu or issue photo
// @Tags Images
// @Accept multipart/form-data
// @Produce json
// @Param category path string true "menus or issues"
// @Param image formData file true "Image file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /images/{category} [post]
func (h *ImageHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image file is required"))
		return
	}

	src, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read upload"))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "cannot read upload"))
		return
	}

	stored, err := h.service.Upload(c.Param("category"), header.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, stored)
}

// Serve godoc
// @Summary Fetch an uploaded image by signed token
// @Tags Images
// @Produce image/*
// @Param token path string true "Signed image token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /images/{token} [get]
func (h *ImageHandler) Serve(c *gin.Context) {
	file, contentType, err := h.service.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "cannot stat image"))
		return
	}

	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
