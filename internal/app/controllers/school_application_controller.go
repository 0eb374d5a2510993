package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/middleware"
)

// SchoolApplicationService is what the workshop request endpoints need
type SchoolApplicationService interface {
	ReviewService
	Submit(ctx context.Context, req dto.SubmitSchoolApplicationRequest) (*models.SchoolApplication, error)
	Get(ctx context.Context, caller *models.Caller, id uuid.UUID) (*models.SchoolApplication, error)
	List(ctx context.Context, caller *models.Caller, filter dto.ApplicationFilter) (*dto.SchoolApplicationListResponse, error)
}

// SchoolApplicationController handles workshop request endpoints
type SchoolApplicationController struct {
	*reviewController
	service SchoolApplicationService
}

// NewSchoolApplicationController creates a new SchoolApplicationController
func NewSchoolApplicationController(service SchoolApplicationService, logger zerolog.Logger) *SchoolApplicationController {
	return &SchoolApplicationController{
		reviewController: &reviewController{review: service, exportName: "school-applications", logger: logger},
		service:          service,
	}
}

// Submit handles a public workshop request
// @Summary Submit a school workshop request
// @Tags public
// @Accept json
// @Produce json
// @Param request body dto.SubmitSchoolApplicationRequest true "Workshop request"
// @Success 201 {object} dto.APIResponse{data=dto.SubmissionResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 429 {object} dto.ErrorResponse "Too many submissions"
// @Router /school-applications [post]
func (c *SchoolApplicationController) Submit(ctx *gin.Context) {
	var req dto.SubmitSchoolApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	app, err := c.service.Submit(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.SubmissionResponse{
		ID:          app.ID,
		Status:      app.Status,
		SubmittedAt: app.SubmittedAt,
	}))
}

// List returns a page of workshop requests
// @Summary List school applications
// @Tags school-applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(PENDING, ACCEPTED, REJECTED)
// @Param starred query bool false "Starred filter"
// @Param search query string false "Case-insensitive search over school and coordinator name"
// @Param page query int false "Page (1-based)" default(1)
// @Param limit query int false "Page size (1-100)" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.SchoolApplicationListResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /school-applications [get]
func (c *SchoolApplicationController) List(ctx *gin.Context) {
	var filter dto.ApplicationFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	result, err := c.service.List(ctx.Request.Context(), middleware.CallerFromContext(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// Get returns one workshop request
// @Summary Get school application
// @Tags school-applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID (UUID)"
// @Success 200 {object} dto.APIResponse{data=models.SchoolApplication}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /school-applications/{id} [get]
func (c *SchoolApplicationController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	app, err := c.service.Get(ctx.Request.Context(), middleware.CallerFromContext(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app))
}
