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

var schoolApplicationColumns = []string{
	"id", "submitted_at", "school_name", "coordinator_name", "coordinator_email", "phone",
	"num_students", "preferred_dates", "comments", "status", "starred", "reviewed_by",
	"reviewed_at", "created_at", "updated_at",
}

// SchoolApplicationRepository handles workshop request database operations
type SchoolApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSchoolApplicationRepository creates a new SchoolApplicationRepository
func NewSchoolApplicationRepository(db *pgxpool.Pool) *SchoolApplicationRepository {
	return &SchoolApplicationRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create inserts a new school application
func (r *SchoolApplicationRepository) Create(ctx context.Context, app *models.SchoolApplication) error {
	dates, err := helpers.EncodeStringList(app.PreferredDates)
	if err != nil {
		return fmt.Errorf("failed to encode preferred dates: %w", err)
	}

	sql, args, err := r.sb.Insert("school_applications").
		Columns("id", "submitted_at", "school_name", "coordinator_name", "coordinator_email", "phone",
			"num_students", "preferred_dates", "comments", "status", "starred").
		Values(app.ID, app.SubmittedAt, app.SchoolName, app.CoordinatorName, app.CoordinatorEmail, app.Phone,
			app.NumStudents, dates, app.Comments, app.Status, app.Starred).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return buildError("create school application", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&app.CreatedAt, &app.UpdatedAt); err != nil {
		return dbError("create school application", err)
	}
	return nil
}

// GetByID retrieves a school application by ID
func (r *SchoolApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SchoolApplication, error) {
	sql, args, err := r.sb.Select(schoolApplicationColumns...).
		From("school_applications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, buildError("get school application", err)
	}

	app, err := scanSchoolApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSchoolApplicationNotFound
		}
		return nil, dbError("get school application", err)
	}
	return app, nil
}

func (r *SchoolApplicationRepository) buildListQueries(q ListQuery) (squirrel.SelectBuilder, squirrel.SelectBuilder) {
	page := applyListFilter(r.sb.Select(schoolApplicationColumns...).From("school_applications"), q, "school_name", "coordinator_name").
		OrderBy(listOrder...)
	if q.Limit > 0 {
		page = page.Limit(q.Limit).Offset(q.Offset)
	}
	count := applyListFilter(r.sb.Select("COUNT(*)").From("school_applications"), q, "school_name", "coordinator_name")
	return page, count
}

// List returns one page of school applications and the total number of matches
func (r *SchoolApplicationRepository) List(ctx context.Context, q ListQuery) ([]*models.SchoolApplication, int64, error) {
	pageQuery, countQuery := r.buildListQueries(q)

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, buildError("count school applications", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, dbError("count school applications", err)
	}

	sql, args, err := pageQuery.ToSql()
	if err != nil {
		return nil, 0, buildError("list school applications", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, dbError("list school applications", err)
	}
	defer rows.Close()

	apps := make([]*models.SchoolApplication, 0)
	for rows.Next() {
		app, err := scanSchoolApplication(rows)
		if err != nil {
			return nil, 0, dbError("scan school application", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbError("iterate school applications", err)
	}

	return apps, total, nil
}

// UpdateStatus sets status and review attribution in one statement and returns the updated row
func (r *SchoolApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus, reviewerID int64, at time.Time) (*models.SchoolApplication, error) {
	sql, args, err := r.sb.Update("school_applications").
		Set("status", status).
		Set("reviewed_by", reviewerID).
		Set("reviewed_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(schoolApplicationColumns)).
		ToSql()
	if err != nil {
		return nil, buildError("update school application status", err)
	}

	app, err := scanSchoolApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSchoolApplicationNotFound
		}
		return nil, dbError("update school application status", err)
	}
	return app, nil
}

// ToggleStar flips the starred flag atomically and returns the new value
func (r *SchoolApplicationRepository) ToggleStar(ctx context.Context, id uuid.UUID) (bool, error) {
	sql, args, err := r.sb.Update("school_applications").
		Set("starred", squirrel.Expr("NOT starred")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING starred").
		ToSql()
	if err != nil {
		return false, buildError("toggle school application star", err)
	}

	var starred bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&starred); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.ErrSchoolApplicationNotFound
		}
		return false, dbError("toggle school application star", err)
	}
	return starred, nil
}

// Delete hard-deletes a school application and returns the removed row
func (r *SchoolApplicationRepository) Delete(ctx context.Context, id uuid.UUID) (*models.SchoolApplication, error) {
	sql, args, err := r.sb.Delete("school_applications").
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(schoolApplicationColumns)).
		ToSql()
	if err != nil {
		return nil, buildError("delete school application", err)
	}

	app, err := scanSchoolApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSchoolApplicationNotFound
		}
		return nil, dbError("delete school application", err)
	}
	return app, nil
}

// CountByStatus summarises the table for the dashboard
func (r *SchoolApplicationRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	return countByStatus(ctx, r.db, r.sb, "school_applications")
}

func scanSchoolApplication(row pgx.Row) (*models.SchoolApplication, error) {
	var (
		app   models.SchoolApplication
		dates string
	)
	err := row.Scan(
		&app.ID, &app.SubmittedAt, &app.SchoolName, &app.CoordinatorName, &app.CoordinatorEmail, &app.Phone,
		&app.NumStudents, &dates, &app.Comments, &app.Status, &app.Starred, &app.ReviewedBy,
		&app.ReviewedAt, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.PreferredDates = helpers.DecodeStringList(dates, "preferred_dates", app.ID.String(), logger.Get())
	return &app, nil
}
