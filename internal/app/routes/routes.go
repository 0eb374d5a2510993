package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/hackathon/internal/app/controllers"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/middleware"
	"github.com/yigit/hackathon/internal/pkg/ratelimit"
)

// Controllers groups every HTTP controller the router mounts
type Controllers struct {
	Auth              *controllers.AuthController
	Application       *controllers.ApplicationController
	SchoolApplication *controllers.SchoolApplicationController
	EmailTemplate     *controllers.EmailTemplateController
	Upload            *controllers.UploadController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	submissionLimiter ratelimit.Limiter,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	submissionLimit := middleware.RateLimit(submissionLimiter, "submit")

	v1.POST("/applications", submissionLimit, ctrl.Application.Submit)
	v1.POST("/school-applications", submissionLimit, ctrl.SchoolApplication.Submit)
	v1.POST("/uploads/id-document", submissionLimit, ctrl.Upload.UploadIDDocument)
	v1.GET("/public/accepted-teams", ctrl.Application.AcceptedTeams)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
		auth.GET("/me", authMiddleware.JWTAuth(), ctrl.Auth.Me)
	}

	// --- Administrator routes ---
	admin := v1.Group("")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(models.RoleAdministrator))

	applications := admin.Group("/applications")
	{
		applications.GET("", ctrl.Application.List)
		applications.GET("/stats", ctrl.Application.Stats)
		applications.GET("/export", ctrl.Application.Export)
		applications.POST("/bulk/status", ctrl.Application.BulkSetStatus)
		applications.POST("/bulk/delete", ctrl.Application.BulkDelete)
		applications.GET("/:id", ctrl.Application.Get)
		applications.DELETE("/:id", ctrl.Application.Delete)
		applications.POST("/:id/status", ctrl.Application.SetStatus)
		applications.POST("/:id/star", ctrl.Application.ToggleStar)
		applications.GET("/:id/email-logs", ctrl.Application.EmailLogs)
	}

	schoolApplications := admin.Group("/school-applications")
	{
		schoolApplications.GET("", ctrl.SchoolApplication.List)
		schoolApplications.GET("/stats", ctrl.SchoolApplication.Stats)
		schoolApplications.GET("/export", ctrl.SchoolApplication.Export)
		schoolApplications.POST("/bulk/status", ctrl.SchoolApplication.BulkSetStatus)
		schoolApplications.POST("/bulk/delete", ctrl.SchoolApplication.BulkDelete)
		schoolApplications.GET("/:id", ctrl.SchoolApplication.Get)
		schoolApplications.DELETE("/:id", ctrl.SchoolApplication.Delete)
		schoolApplications.POST("/:id/status", ctrl.SchoolApplication.SetStatus)
		schoolApplications.POST("/:id/star", ctrl.SchoolApplication.ToggleStar)
		schoolApplications.GET("/:id/email-logs", ctrl.SchoolApplication.EmailLogs)
	}

	templates := admin.Group("/email-templates")
	{
		templates.GET("", ctrl.EmailTemplate.List)
		templates.POST("", ctrl.EmailTemplate.Create)
		templates.GET("/:id", ctrl.EmailTemplate.Get)
		templates.PUT("/:id", ctrl.EmailTemplate.Update)
		templates.POST("/:id/activate", ctrl.EmailTemplate.Activate)
	}

	admin.POST("/users", ctrl.Auth.CreateUser)
}
