package services

import (
	"context"
	"net/url"
	"strconv"
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

// ApplicationService handles team applications
type ApplicationService struct {
	*reviewWorkflow[*models.Application]
	repo      ApplicationStore
	logs      EmailLogStore
	cache     AcceptedTeamsCache
	documents DocumentRemover
	now       func() time.Time
	logger    zerolog.Logger
}

// NewApplicationService creates a new ApplicationService. A nil cache disables caching;
// a nil documents leaves uploaded ID documents in place on delete.
func NewApplicationService(repo ApplicationStore, logs EmailLogStore, notifier Notifier, cache AcceptedTeamsCache, documents DocumentRemover, logger zerolog.Logger) *ApplicationService {
	if cache == nil {
		cache = NoopAcceptedTeamsCache()
	}
	s := &ApplicationService{
		repo:      repo,
		logs:      logs,
		cache:     cache,
		documents: documents,
		now:       helpers.NowUTC,
		logger:    logger,
	}
	s.reviewWorkflow = &reviewWorkflow[*models.Application]{
		store:    repo,
		notifier: notifier,
		now:      func() time.Time { return s.now() },
		logger:   logger,
		changed:  cache.Invalidate,
		removed:  s.removeDocument,
	}
	return s
}

// removeDocument deletes the ID document of a deleted application.
// A failure leaves an orphaned file and is only logged.
func (s *ApplicationService) removeDocument(ctx context.Context, app *models.Application) {
	if s.documents == nil || app.IDDocumentURL == nil || *app.IDDocumentURL == "" {
		return
	}
	if err := s.documents.RemoveIDDocument(ctx, *app.IDDocumentURL); err != nil {
		s.logger.Warn().Err(err).
			Str("applicationId", app.ID.String()).
			Str("url", *app.IDDocumentURL).
			Msg("Failed to remove ID document of deleted application")
	}
}

// Submit validates and stores a new application as PENDING and unstarred.
// All problems are reported together; nothing is stored on failure.
func (s *ApplicationService) Submit(ctx context.Context, req dto.SubmitApplicationRequest) (*models.Application, error) {
	app, err := sanitizeApplication(req)
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

	s.logger.Info().Str("applicationId", app.ID.String()).Str("teamName", app.TeamName).Msg("Application submitted")
	return app, nil
}

// Get returns one application
func (s *ApplicationService) Get(ctx context.Context, caller *models.Caller, id uuid.UUID) (*models.Application, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// List returns one page of applications in the fixed admin order
func (s *ApplicationService) List(ctx context.Context, caller *models.Caller, filter dto.ApplicationFilter) (*dto.ApplicationListResponse, error) {
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

	return &dto.ApplicationListResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// Stats counts applications per status
func (s *ApplicationService) Stats(ctx context.Context, caller *models.Caller) (models.StatusCounts, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return models.StatusCounts{}, err
	}
	return s.repo.CountByStatus(ctx)
}

// ListAccepted returns the public projection of accepted teams, earliest acceptance first
func (s *ApplicationService) ListAccepted(ctx context.Context) ([]models.AcceptedTeam, error) {
	cached, gen, ok := s.cache.Get(ctx)
	if ok {
		return cached, nil
	}

	teams, err := s.repo.ListAccepted(ctx, s.now())
	if err != nil {
		return nil, err
	}
	// A change committed during the read has advanced gen, so this result is discarded
	s.cache.Set(ctx, gen, teams)
	return teams, nil
}

// Export returns every matching application in list order as an export table
func (s *ApplicationService) Export(ctx context.Context, caller *models.Caller, filter dto.ApplicationFilter) (export.Table, error) {
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
	return export.ApplicationsTable(items), nil
}

// EmailLogs lists the notification attempts for one application
func (s *ApplicationService) EmailLogs(ctx context.Context, caller *models.Caller, id uuid.UUID) ([]*models.EmailNotificationLog, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.logs.ListByApplication(ctx, models.KindTeam, id)
}

func sanitizeApplication(req dto.SubmitApplicationRequest) (*models.Application, error) {
	verr := apperrors.NewValidationError()

	app := &models.Application{
		TeamName:          strings.TrimSpace(req.TeamName),
		School:            strings.TrimSpace(req.School),
		GradeOrYear:       strings.TrimSpace(req.GradeOrYear),
		ContactEmail:      validation.NormalizeEmail(req.ContactEmail),
		ParticipantsCount: req.ParticipantsCount,
		IDDocumentURL:     validation.TrimOptional(req.IDDocumentURL),
		ExperienceText:    validation.TrimOptional(req.ExperienceText),
		IdeasText:         validation.TrimOptional(req.IdeasText),
		MotivationText:    strings.TrimSpace(req.MotivationText),
	}

	requireText(verr, "teamName", app.TeamName, 120)
	requireText(verr, "school", app.School, 200)
	requireText(verr, "gradeOrYear", app.GradeOrYear, 50)
	requireText(verr, "motivationText", app.MotivationText, 5000)

	if app.ContactEmail == "" {
		verr.Add("contactEmail", "contactEmail is required")
	} else if !validation.IsEmail(app.ContactEmail) {
		verr.Add("contactEmail", "contactEmail must be a valid email address")
	}

	participants, blank := validation.TrimList(req.Participants)
	app.Participants = participants
	if len(participants) == 0 {
		verr.Add("participants", "at least one participant is required")
	}
	for _, i := range blank {
		verr.Add("participants", "participant names must not be blank (entry "+strconv.Itoa(i+1)+")")
	}
	if req.ParticipantsCount != len(participants) {
		verr.Add("participantsCount", "participantsCount must equal the number of participants ("+strconv.Itoa(len(participants))+")")
	}

	if app.IDDocumentURL != nil && !isDocumentURL(*app.IDDocumentURL) {
		verr.Add("idDocumentUrl", "idDocumentUrl must be an http(s) URL or an uploaded document path")
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return app, nil
}

// isDocumentURL accepts absolute http(s) URLs and paths returned by local uploads
func isDocumentURL(raw string) bool {
	if strings.HasPrefix(raw, "uploads/") && !strings.Contains(raw, "..") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
