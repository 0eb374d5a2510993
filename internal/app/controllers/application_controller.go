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

// ApplicationService is what the team application endpoints need
type ApplicationService interface {
	ReviewService
	Submit(ctx context.Context, req dto.SubmitApplicationRequest) (*models.Application, error)
	Get(ctx context.Context, caller *models.Caller, id uuid.UUID) (*models.Application, error)
	List(ctx context.Context, caller *models.Caller, filter dto.ApplicationFilter) (*dto.ApplicationListResponse, error)
	ListAccepted(ctx context.Context) ([]models.AcceptedTeam, error)
}

// ApplicationController handles team application endpoints
type ApplicationController struct {
	*reviewController
	service ApplicationService
	logger  zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(service ApplicationService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		reviewController: &reviewController{review: service, exportName: "applications", logger: logger},
		service:          service,
		logger:           logger,
	}
}

// Submit handles a public team application
// @Summary Submit a team application
// @Description Public endpoint. Every validation problem is reported together.
// @Tags public
// @Accept json
// @Produce json
// @Param request body dto.SubmitApplicationRequest true "Application form"
// @Success 201 {object} dto.APIResponse{data=dto.SubmissionResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 429 {object} dto.ErrorResponse "Too many submissions"
// @Router /applications [post]
func (c *ApplicationController) Submit(ctx *gin.Context) {
	var req dto.SubmitApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Debug().Err(err).Msg("Invalid application payload")
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

// List returns a page of team applications
// @Summary List team applications
// @Description Ordered starred first, then newest submissions.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(PENDING, ACCEPTED, REJECTED)
// @Param starred query bool false "Starred filter"
// @Param search query string false "Case-insensitive search over team name and school"
// @Param page query int false "Page (1-based)" default(1)
// @Param limit query int false "Page size (1-100)" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationListResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /applications [get]
func (c *ApplicationController) List(ctx *gin.Context) {
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

// Get returns one team application
// @Summary Get team application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID (UUID)"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /applications/{id} [get]
func (c *ApplicationController) Get(ctx *gin.Context) {
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

// AcceptedTeams returns the public list of accepted teams
// @Summary Accepted teams
// @Description Public projection: no contact details, participants or free text.
// @Tags public
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.AcceptedTeam}
// @Router /public/accepted-teams [get]
func (c *ApplicationController) AcceptedTeams(ctx *gin.Context) {
	teams, err := c.service.ListAccepted(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if teams == nil {
		teams = []models.AcceptedTeam{}
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(teams))
}
