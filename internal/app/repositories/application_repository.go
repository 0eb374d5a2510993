package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/helpers"
	"github.com/yigit/hackathon/internal/pkg/logger"
)

var applicationColumns = []string{
	"id", "submitted_at", "team_name", "school", "grade_or_year", "contact_email",
	"participants", "participants_count", "id_document_url", "experience_text", "ideas_text",
	"motivation_text", "status", "starred", "reviewed_by", "reviewed_at", "created_at", "updated_at",
}

// ApplicationRepository handles team application database operations
type ApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create inserts a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	participants, err := helpers.EncodeStringList(app.Participants)
	if err != nil {
		return fmt.Errorf("failed to encode participants: %w", err)
	}

	sql, args, err := r.sb.Insert("applications").
		Columns("id", "submitted_at", "team_name", "school", "grade_or_year", "contact_email",
			"participants", "participants_count", "id_document_url", "experience_text", "ideas_text",
			"motivation_text", "status", "starred").
		Values(app.ID, app.SubmittedAt, app.TeamName, app.School, app.GradeOrYear, app.ContactEmail,
			participants, app.ParticipantsCount, app.IDDocumentURL, app.ExperienceText, app.IdeasText,
			app.MotivationText, app.Status, app.Starred).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return buildError("create application", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&app.CreatedAt, &app.UpdatedAt); err != nil {
		return dbError("create application", err)
	}
	return nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	sql, args, err := r.sb.Select(applicationColumns...).
		From("applications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, buildError("get application", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, dbError("get application", err)
	}
	return app, nil
}

// buildListQueries returns the page query and its matching count query
func (r *ApplicationRepository) buildListQueries(q ListQuery) (squirrel.SelectBuilder, squirrel.SelectBuilder) {
	page := applyListFilter(r.sb.Select(applicationColumns...).From("applications"), q, "team_name", "school").
		OrderBy(listOrder...)
	if q.Limit > 0 {
		page = page.Limit(q.Limit).Offset(q.Offset)
	}
	count := applyListFilter(r.sb.Select("COUNT(*)").From("applications"), q, "team_name", "school")
	return page, count
}

// List returns one page of applications and the total number of matches
func (r *ApplicationRepository) List(ctx context.Context, q ListQuery) ([]*models.Application, int64, error) {
	pageQuery, countQuery := r.buildListQueries(q)

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, buildError("count applications", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, dbError("count applications", err)
	}

	sql, args, err := pageQuery.ToSql()
	if err != nil {
		return nil, 0, buildError("list applications", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, dbError("list applications", err)
	}
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, dbError("scan application", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbError("iterate applications", err)
	}

	return apps, total, nil
}

// UpdateStatus sets status and review attribution in one statement and returns the updated row
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus, reviewerID int64, at time.Time) (*models.Application, error) {
	sql, args, err := r.sb.Update("applications").
		Set("status", status).
		Set("reviewed_by", reviewerID).
		Set("reviewed_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		return nil, buildError("update application status", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, dbError("update application status", err)
	}
	return app, nil
}

// ToggleStar flips the starred flag atomically and returns the new value
func (r *ApplicationRepository) ToggleStar(ctx context.Context, id uuid.UUID) (bool, error) {
	sql, args, err := r.sb.Update("applications").
		Set("starred", squirrel.Expr("NOT starred")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING starred").
		ToSql()
	if err != nil {
		return false, buildError("toggle application star", err)
	}

	var starred bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&starred); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.ErrApplicationNotFound
		}
		return false, dbError("toggle application star", err)
	}
	return starred, nil
}

// Delete hard-deletes an application and returns the removed row. Notification logs cascade.
func (r *ApplicationRepository) Delete(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	sql, args, err := r.sb.Delete("applications").
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		return nil, buildError("delete application", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, dbError("delete application", err)
	}
	return app, nil
}

// buildAcceptedQuery selects the public projection, earliest acceptance first
func (r *ApplicationRepository) buildAcceptedQuery() squirrel.SelectBuilder {
	return r.sb.Select("id", "team_name", "school", "participants_count", "reviewed_at").
		From("applications").
		Where(squirrel.Eq{"status": models.StatusAccepted}).
		OrderBy("reviewed_at ASC NULLS LAST", "submitted_at ASC", "id ASC")
}

// ListAccepted returns the accepted teams. acceptedAt falls back to now when reviewed_at is NULL.
func (r *ApplicationRepository) ListAccepted(ctx context.Context, now time.Time) ([]models.AcceptedTeam, error) {
	sql, args, err := r.buildAcceptedQuery().ToSql()
	if err != nil {
		return nil, buildError("list accepted teams", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError("list accepted teams", err)
	}
	defer rows.Close()

	teams := make([]models.AcceptedTeam, 0)
	for rows.Next() {
		var (
			team       models.AcceptedTeam
			reviewedAt *time.Time
		)
		if err := rows.Scan(&team.ID, &team.TeamName, &team.School, &team.ParticipantsCount, &reviewedAt); err != nil {
			return nil, dbError("scan accepted team", err)
		}
		team.AcceptedAt = now
		if reviewedAt != nil {
			team.AcceptedAt = *reviewedAt
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate accepted teams", err)
	}
	return teams, nil
}

// CountByStatus summarises the table for the dashboard
func (r *ApplicationRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	return countByStatus(ctx, r.db, r.sb, "applications")
}

// scanApplication reads one row in applicationColumns order
func scanApplication(row pgx.Row) (*models.Application, error) {
	var (
		app          models.Application
		participants string
	)
	err := row.Scan(
		&app.ID, &app.SubmittedAt, &app.TeamName, &app.School, &app.GradeOrYear, &app.ContactEmail,
		&participants, &app.ParticipantsCount, &app.IDDocumentURL, &app.ExperienceText, &app.IdeasText,
		&app.MotivationText, &app.Status, &app.Starred, &app.ReviewedBy, &app.ReviewedAt,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.Participants = helpers.DecodeStringList(participants, "participants", app.ID.String(), logger.Get())
	return &app, nil
}
