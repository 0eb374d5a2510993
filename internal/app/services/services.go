// Package services holds the business operations behind the HTTP handlers and the CLI.
//
//   - ApplicationService: team submissions, review workflow, listing, public projection, export
//   - SchoolApplicationService: workshop requests with the same review workflow
//   - NotificationService: decision emails and their audit log
//   - EmailTemplateService: admin-editable decision templates
//   - AuthService: login and user accounts
//   - UploadService: ID document uploads
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/repositories"
)

// reviewable is implemented by both application kinds
type reviewable interface {
	NotificationTarget() models.NotificationTarget
	ReviewState() (models.ApplicationStatus, *time.Time)
}

// reviewStore is the persistence the review workflow needs
type reviewStore[T reviewable] interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus, reviewerID int64, at time.Time) (T, error)
	ToggleStar(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (T, error)
}

// ApplicationStore is the team application persistence
type ApplicationStore interface {
	reviewStore[*models.Application]
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	List(ctx context.Context, q repositories.ListQuery) ([]*models.Application, int64, error)
	ListAccepted(ctx context.Context, now time.Time) ([]models.AcceptedTeam, error)
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
}

// SchoolApplicationStore is the workshop request persistence
type SchoolApplicationStore interface {
	reviewStore[*models.SchoolApplication]
	Create(ctx context.Context, app *models.SchoolApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SchoolApplication, error)
	List(ctx context.Context, q repositories.ListQuery) ([]*models.SchoolApplication, int64, error)
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
}

// TemplateStore is the template lookup used by notifications
type TemplateStore interface {
	FindActive(ctx context.Context, typ models.NotificationType, audience models.ApplicationKind) (*models.EmailTemplate, error)
}

// EmailTemplateStore is the full template persistence used by the admin endpoints
type EmailTemplateStore interface {
	TemplateStore
	List(ctx context.Context, typ models.NotificationType, audience models.ApplicationKind) ([]*models.EmailTemplate, error)
	GetByID(ctx context.Context, id int64) (*models.EmailTemplate, error)
	Create(ctx context.Context, tmpl *models.EmailTemplate) error
	Update(ctx context.Context, id int64, subject, body string) (*models.EmailTemplate, error)
	Activate(ctx context.Context, id int64) (*models.EmailTemplate, error)
}

// EmailLogStore appends and reads notification audit records
type EmailLogStore interface {
	Create(ctx context.Context, entry *models.EmailNotificationLog) error
	ListByApplication(ctx context.Context, kind models.ApplicationKind, id uuid.UUID) ([]*models.EmailNotificationLog, error)
}

// UserStore is the account persistence
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AcceptedTeamsCache caches the public projection. Implementations treat failures as misses.
// Get reports the generation it looked at; Set must drop teams whose generation
// an Invalidate has since advanced.
type AcceptedTeamsCache interface {
	Get(ctx context.Context) (teams []models.AcceptedTeam, gen int64, ok bool)
	Set(ctx context.Context, gen int64, teams []models.AcceptedTeam)
	Invalidate(ctx context.Context)
}

// DocumentRemover deletes uploaded ID documents by the URL stored on the application
type DocumentRemover interface {
	RemoveIDDocument(ctx context.Context, url string) error
}

// Notifier dispatches decision emails. It never reports failure to the caller.
type Notifier interface {
	Dispatch(ctx context.Context, target models.NotificationTarget, decision models.NotificationType)
}

// noopCache is used when Redis is disabled
type noopCache struct{}

func (noopCache) Get(context.Context) ([]models.AcceptedTeam, int64, bool) { return nil, 0, false }
func (noopCache) Set(context.Context, int64, []models.AcceptedTeam)        {}
func (noopCache) Invalidate(context.Context)                               {}

// NoopAcceptedTeamsCache returns a cache that never hits
func NoopAcceptedTeamsCache() AcceptedTeamsCache {
	return noopCache{}
}
