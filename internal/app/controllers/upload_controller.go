package controllers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/middleware"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
)

// UploadService stores ID documents
type UploadService interface {
	UploadIDDocument(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.UploadResponse, error)
}

// UploadController handles file uploads
type UploadController struct {
	service UploadService
	logger  zerolog.Logger
}

// NewUploadController creates a new UploadController
func NewUploadController(service UploadService, logger zerolog.Logger) *UploadController {
	return &UploadController{service: service, logger: logger}
}

// UploadIDDocument stores an ID document and returns its URL
// @Summary Upload ID document
// @Description Public endpoint. Pass the returned url as idDocumentUrl when submitting.
// @Tags public
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF, PNG or JPEG document"
// @Success 201 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /uploads/id-document [post]
func (c *UploadController) UploadIDDocument(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Upload without file field")
		middleware.HandleAPIError(ctx, apperrors.NewValidationError().Add("file", "file is required"))
		return
	}

	resp, err := c.service.UploadIDDocument(ctx.Request.Context(), fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}
