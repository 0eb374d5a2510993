package dto

import "github.com/yigit/hackathon/internal/app/models"

// CreateEmailTemplateRequest adds an inactive template
type CreateEmailTemplateRequest struct {
	Type     models.NotificationType `json:"type" binding:"required,oneof=ACCEPTANCE REJECTION" example:"ACCEPTANCE"`
	Audience models.ApplicationKind  `json:"audience" binding:"required,oneof=TEAM SCHOOL" example:"TEAM"`
	Subject  string                  `json:"subject" binding:"required,max=255" example:"Welcome, {{teamName}}!"`
	Body     string                  `json:"body" binding:"required,max=100000"`
}

// UpdateEmailTemplateRequest changes subject and body of a template
type UpdateEmailTemplateRequest struct {
	Subject string `json:"subject" binding:"required,max=255"`
	Body    string `json:"body" binding:"required,max=100000"`
}

// EmailTemplateFilter narrows the template list
type EmailTemplateFilter struct {
	Type     models.NotificationType `form:"type" binding:"omitempty,oneof=ACCEPTANCE REJECTION"`
	Audience models.ApplicationKind  `form:"audience" binding:"omitempty,oneof=TEAM SCHOOL"`
}
