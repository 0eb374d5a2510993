package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/hackathon/internal/app/auth"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
)

// EmailTemplateService manages the decision email templates
type EmailTemplateService struct {
	repo   EmailTemplateStore
	logger zerolog.Logger
}

// NewEmailTemplateService creates a new EmailTemplateService
func NewEmailTemplateService(repo EmailTemplateStore, logger zerolog.Logger) *EmailTemplateService {
	return &EmailTemplateService{repo: repo, logger: logger}
}

// List returns stored templates, optionally narrowed by type and audience
func (s *EmailTemplateService) List(ctx context.Context, caller *models.Caller, filter dto.EmailTemplateFilter) ([]*models.EmailTemplate, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter.Type, filter.Audience)
}

// Get returns one template
func (s *EmailTemplateService) Get(ctx context.Context, caller *models.Caller, id int64) (*models.EmailTemplate, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Create stores a new inactive template
func (s *EmailTemplateService) Create(ctx context.Context, caller *models.Caller, req dto.CreateEmailTemplateRequest) (*models.EmailTemplate, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	if !req.Type.IsValid() {
		verr.Add("type", "type must be one of: ACCEPTANCE REJECTION")
	}
	if !req.Audience.IsValid() {
		verr.Add("audience", "audience must be one of: TEAM SCHOOL")
	}
	subject, body := checkTemplateText(verr, req.Subject, req.Body)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	tmpl := &models.EmailTemplate{
		Type:     req.Type,
		Audience: req.Audience,
		Subject:  subject,
		Body:     body,
	}
	if err := s.repo.Create(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("templateId", tmpl.ID).Str("type", string(tmpl.Type)).Msg("Email template created")
	return tmpl, nil
}

// Update replaces subject and body. An active template stays active.
func (s *EmailTemplateService) Update(ctx context.Context, caller *models.Caller, id int64, req dto.UpdateEmailTemplateRequest) (*models.EmailTemplate, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	subject, body := checkTemplateText(verr, req.Subject, req.Body)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, subject, body)
}

// Activate makes id the only active template of its type and audience
func (s *EmailTemplateService) Activate(ctx context.Context, caller *models.Caller, id int64) (*models.EmailTemplate, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}

	tmpl, err := s.repo.Activate(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("templateId", tmpl.ID).
		Str("type", string(tmpl.Type)).
		Str("audience", string(tmpl.Audience)).
		Msg("Email template activated")
	return tmpl, nil
}

// Preview renders the template with sample values without sending anything
func (s *EmailTemplateService) Preview(ctx context.Context, caller *models.Caller, id int64, placeholders map[string]string) (subject, body string, err error) {
	tmpl, err := s.Get(ctx, caller, id)
	if err != nil {
		return "", "", err
	}
	return Render(tmpl.Subject, placeholders), Render(tmpl.Body, placeholders), nil
}

func checkTemplateText(verr *apperrors.ValidationError, subject, body string) (string, string) {
	subject = strings.TrimSpace(subject)
	requireText(verr, "subject", subject, maxSubjectLength)
	if strings.TrimSpace(body) == "" {
		verr.Add("body", "body is required")
	}
	return subject, body
}
