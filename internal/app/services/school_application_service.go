package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/hackathon/internal/app/auth"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/app/repositories"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/export"
	"github.com/yigit/hackathon/internal/pkg/helpers"
	"github.com/yigit/hackathon/internal/pkg/validation"
)

// SchoolApplicationService handles workshop requests
type SchoolApplicationService struct {
	*reviewWorkflow[*models.SchoolApplication]
	repo   SchoolApplicationStore
	logs   EmailLogStore
	now    func() time.Time
	logger zerolog.Logger
}

// NewSchoolApplicationService creates a new SchoolApplicationService
func NewSchoolApplicationService(repo SchoolApplicationStore, logs EmailLogStore, notifier Notifier, logger zerolog.Logger) *SchoolApplicationService {
	s := &SchoolApplicationService{
		repo:   repo,
		logs:   logs,
		now:    helpers.NowUTC,
		logger: logger,
	}
	s.reviewWorkflow = &reviewWorkflow[*models.SchoolApplication]{
		store:    repo,
		notifier: notifier,
		now:      func() time.Time { return s.now() },
		logger:   logger,
	}
	return s
}

// Submit validates and stores a new workshop request as PENDING
func (s *SchoolApplicationService) Submit(ctx context.Context, req dto.SubmitSchoolApplicationRequest) (*models.SchoolApplication, error) {
	app, err := sanitizeSchoolApplication(req)
	if err != nil {
		return nil, err
	}

	app.ID = uuid.New()
	app.SubmittedAt = s.now()
	app.Status = models.StatusPending
	app.Starred = false

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info().Str("applicationId", app.ID.String()).Str("schoolName", app.SchoolName).Msg("School application submitted")
	return app, nil
}

// Get returns one workshop request
func (s *SchoolApplicationService) Get(ctx context.Context, caller *models.Caller, id uuid.UUID) (*models.SchoolApplication, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// List returns one page of workshop requests
func (s *SchoolApplicationService) List(ctx context.Context, caller *models.Caller, filter dto.ApplicationFilter) (*dto.SchoolApplicationListResponse, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	q, page, limit, err := pagedQuery(filter)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return &dto.SchoolApplicationListResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// Stats counts workshop requests per status
func (s *SchoolApplicationService) Stats(ctx context.Context, caller *models.Caller) (models.StatusCounts, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return models.StatusCounts{}, err
	}
	return s.repo.CountByStatus(ctx)
}

// Export returns every matching workshop request as an export table
func (s *SchoolApplicationService) Export(ctx context.Context, caller *models.Caller, filter dto.ApplicationFilter) (export.Table, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return export.Table{}, err
	}
	if err := validateFilter(filter); err != nil {
		return export.Table{}, err
	}

	items, _, err := s.repo.List(ctx, repositories.ListQuery{
		Status:  filter.Status,
		Starred: filter.StarredFilter(),
		Search:  filter.Search,
	})
	if err != nil {
		return export.Table{}, err
	}
	return export.SchoolApplicationsTable(items), nil
}

// EmailLogs lists the notification attempts for one workshop request
func (s *SchoolApplicationService) EmailLogs(ctx context.Context, caller *models.Caller, id uuid.UUID) ([]*models.EmailNotificationLog, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.logs.ListByApplication(ctx, models.KindSchool, id)
}

func sanitizeSchoolApplication(req dto.SubmitSchoolApplicationRequest) (*models.SchoolApplication, error) {
	verr := apperrors.NewValidationError()

	app := &models.SchoolApplication{
		SchoolName:       strings.TrimSpace(req.SchoolName),
		CoordinatorName:  strings.TrimSpace(req.CoordinatorName),
		CoordinatorEmail: validation.NormalizeEmail(req.CoordinatorEmail),
		Phone:            strings.TrimSpace(req.Phone),
		NumStudents:      req.NumStudents,
		Comments:         validation.TrimOptional(req.Comments),
	}

	requireText(verr, "schoolName", app.SchoolName, 200)
	requireText(verr, "coordinatorName", app.CoordinatorName, 120)

	if app.CoordinatorEmail == "" {
		verr.Add("coordinatorEmail", "coordinatorEmail is required")
	} else if !validation.IsEmail(app.CoordinatorEmail) {
		verr.Add("coordinatorEmail", "coordinatorEmail must be a valid email address")
	}

	if app.Phone == "" {
		verr.Add("phone", "phone is required")
	} else if !validation.CompiledPatterns.Phone.MatchString(app.Phone) {
		verr.Add("phone", "phone must be a valid phone number")
	}

	if app.NumStudents < 1 {
		verr.Add("numStudents", "numStudents must be at least 1")
	}

	dates, blank := validation.TrimList(req.PreferredDates)
	app.PreferredDates = dates
	if len(dates) == 0 {
		verr.Add("preferredDates", "at least one preferred date is required")
	}
	if len(blank) > 0 {
		verr.Add("preferredDates", "preferred dates must not be blank")
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return app, nil
}
