package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/middleware"
)

// EmailTemplateService is what the template endpoints need
type EmailTemplateService interface {
	List(ctx context.Context, caller *models.Caller, filter dto.EmailTemplateFilter) ([]*models.EmailTemplate, error)
	Get(ctx context.Context, caller *models.Caller, id int64) (*models.EmailTemplate, error)
	Create(ctx context.Context, caller *models.Caller, req dto.CreateEmailTemplateRequest) (*models.EmailTemplate, error)
	Update(ctx context.Context, caller *models.Caller, id int64, req dto.UpdateEmailTemplateRequest) (*models.EmailTemplate, error)
	Activate(ctx context.Context, caller *models.Caller, id int64) (*models.EmailTemplate, error)
}

// EmailTemplateController handles decision email template endpoints
type EmailTemplateController struct {
	service EmailTemplateService
	logger  zerolog.Logger
}

// NewEmailTemplateController creates a new EmailTemplateController
func NewEmailTemplateController(service EmailTemplateService, logger zerolog.Logger) *EmailTemplateController {
	return &EmailTemplateController{service: service, logger: logger}
}

// List returns templates
// @Summary List email templates
// @Tags email-templates
// @Produce json
// @Security BearerAuth
// @Param type query string false "Decision type" Enums(ACCEPTANCE, REJECTION)
// @Param audience query string false "Audience" Enums(TEAM, SCHOOL)
// @Success 200 {object} dto.APIResponse{data=[]models.EmailTemplate}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /email-templates [get]
func (c *EmailTemplateController) List(ctx *gin.Context) {
	var filter dto.EmailTemplateFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	templates, err := c.service.List(ctx.Request.Context(), middleware.CallerFromContext(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if templates == nil {
		templates = []*models.EmailTemplate{}
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(templates))
}

// Get returns one template
// @Summary Get email template
// @Tags email-templates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} dto.APIResponse{data=models.EmailTemplate}
// @Failure 404 {object} dto.ErrorResponse
// @Router /email-templates/{id} [get]
func (c *EmailTemplateController) Get(ctx *gin.Context) {
	id, ok := parseTemplateID(ctx)
	if !ok {
		return
	}

	tmpl, err := c.service.Get(ctx.Request.Context(), middleware.CallerFromContext(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tmpl))
}

// Create adds an inactive template
// @Summary Create email template
// @Description Subject and body may use {{placeholder}} markers. New templates are inactive.
// @Tags email-templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEmailTemplateRequest true "Template"
// @Success 201 {object} dto.APIResponse{data=models.EmailTemplate}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /email-templates [post]
func (c *EmailTemplateController) Create(ctx *gin.Context) {
	var req dto.CreateEmailTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	tmpl, err := c.service.Create(ctx.Request.Context(), middleware.CallerFromContext(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(tmpl))
}

// Update replaces subject and body
// @Summary Update email template
// @Tags email-templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param request body dto.UpdateEmailTemplateRequest true "Subject and body"
// @Success 200 {object} dto.APIResponse{data=models.EmailTemplate}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /email-templates/{id} [put]
func (c *EmailTemplateController) Update(ctx *gin.Context) {
	id, ok := parseTemplateID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateEmailTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	tmpl, err := c.service.Update(ctx.Request.Context(), middleware.CallerFromContext(ctx), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tmpl))
}

// Activate makes a template the active one of its type and audience
// @Summary Activate email template
// @Tags email-templates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} dto.APIResponse{data=models.EmailTemplate}
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Concurrent activation"
// @Router /email-templates/{id}/activate [post]
func (c *EmailTemplateController) Activate(ctx *gin.Context) {
	id, ok := parseTemplateID(ctx)
	if !ok {
		return
	}

	tmpl, err := c.service.Activate(ctx.Request.Context(), middleware.CallerFromContext(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tmpl))
}

func parseTemplateID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid template ID").WithField("id")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
