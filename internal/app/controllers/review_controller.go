// Package controllers handles HTTP request handling
package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/middleware"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/export"
)

// ReviewService is the review workflow shared by both application kinds
type ReviewService interface {
	SetStatus(ctx context.Context, caller *models.Caller, id uuid.UUID, status models.ApplicationStatus) (*dto.StatusResult, error)
	ToggleStar(ctx context.Context, caller *models.Caller, id uuid.UUID) (*dto.StarResult, error)
	Delete(ctx context.Context, caller *models.Caller, id uuid.UUID) error
	BulkSetStatus(ctx context.Context, caller *models.Caller, ids []uuid.UUID, status models.ApplicationStatus) (*dto.BulkResult, error)
	BulkDelete(ctx context.Context, caller *models.Caller, ids []uuid.UUID) (*dto.BulkResult, error)
	Stats(ctx context.Context, caller *models.Caller) (models.StatusCounts, error)
	Export(ctx context.Context, caller *models.Caller, filter dto.ApplicationFilter) (export.Table, error)
	EmailLogs(ctx context.Context, caller *models.Caller, id uuid.UUID) ([]*models.EmailNotificationLog, error)
}

// reviewController serves the admin review endpoints of one application kind
type reviewController struct {
	review     ReviewService
	exportName string
	logger     zerolog.Logger
}

// SetStatus handles a status change
// @Summary Set application status
// @Description Any status may follow any other. ACCEPTED and REJECTED send a decision email; email failures do not fail the request.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID (UUID)"
// @Param request body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.StatusResult}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Failure 403 {object} dto.ErrorResponse "Not an administrator"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id}/status [post]
// @Router /school-applications/{id}/status [post]
func (c *reviewController) SetStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	result, err := c.review.SetStatus(ctx.Request.Context(), middleware.CallerFromContext(ctx), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// ToggleStar flips the starred flag
// @Summary Toggle star
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID (UUID)"
// @Success 200 {object} dto.APIResponse{data=dto.StarResult}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /applications/{id}/star [post]
// @Router /school-applications/{id}/star [post]
func (c *reviewController) ToggleStar(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	result, err := c.review.ToggleStar(ctx.Request.Context(), middleware.CallerFromContext(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// Delete hard-deletes an application
// @Summary Delete application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID (UUID)"
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /applications/{id} [delete]
// @Router /school-applications/{id} [delete]
func (c *reviewController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	if err := c.review.Delete(ctx.Request.Context(), middleware.CallerFromContext(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Application deleted successfully"))
}

// BulkSetStatus applies one status to many applications
// @Summary Bulk status change
// @Description Each id is processed independently; the response lists successes and failures.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkStatusRequest true "Ids and status"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /applications/bulk/status [post]
// @Router /school-applications/bulk/status [post]
func (c *reviewController) BulkSetStatus(ctx *gin.Context) {
	var req dto.BulkStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	result, err := c.review.BulkSetStatus(ctx.Request.Context(), middleware.CallerFromContext(ctx), req.IDs, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Str("status", string(req.Status)).
		Msg("Bulk status change completed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// BulkDelete deletes many applications
// @Summary Bulk delete
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "Ids"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /applications/bulk/delete [post]
// @Router /school-applications/bulk/delete [post]
func (c *reviewController) BulkDelete(ctx *gin.Context) {
	var req dto.BulkDeleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	result, err := c.review.BulkDelete(ctx.Request.Context(), middleware.CallerFromContext(ctx), req.IDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// Stats returns counts per status
// @Summary Application statistics
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.StatusCounts}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /applications/stats [get]
// @Router /school-applications/stats [get]
func (c *reviewController) Stats(ctx *gin.Context) {
	counts, err := c.review.Stats(ctx.Request.Context(), middleware.CallerFromContext(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(counts))
}

// Export streams every matching application as CSV or XLSX
// @Summary Export applications
// @Description Same filters and order as the list, without pagination.
// @Tags applications
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv or xlsx" Enums(csv, xlsx)
// @Param status query string false "Status filter" Enums(PENDING, ACCEPTED, REJECTED)
// @Param starred query bool false "Starred filter"
// @Param search query string false "Case-insensitive search"
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /applications/export [get]
// @Router /school-applications/export [get]
func (c *reviewController) Export(ctx *gin.Context) {
	format, err := export.ParseFormat(ctx.Query("format"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(err.Error()))
		return
	}

	var filter dto.ApplicationFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	table, err := c.review.Export(ctx.Request.Context(), middleware.CallerFromContext(ctx), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.%s", c.exportName, time.Now().UTC().Format("20060102"), format)
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Header("Content-Type", format.ContentType())
	ctx.Status(http.StatusOK)

	if err := export.Write(ctx.Writer, format, table); err != nil {
		c.logger.Error().Err(err).Str("format", string(format)).Msg("Failed to write export")
	}
}

// EmailLogs lists notification attempts for an application
// @Summary Notification audit log
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID (UUID)"
// @Success 200 {object} dto.APIResponse{data=dto.EmailLogListResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /applications/{id}/email-logs [get]
// @Router /school-applications/{id}/email-logs [get]
func (c *reviewController) EmailLogs(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	logs, err := c.review.EmailLogs(ctx.Request.Context(), middleware.CallerFromContext(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.EmailLogListResponse{Items: logs}))
}

// parseIDParam reads the :id path parameter, answering 400 when it is not a UUID
func parseIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid application ID").WithField("id")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return uuid.Nil, false
	}
	return id, true
}
