package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/db"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/dberrors"
)

var emailTemplateColumns = []string{"id", "type", "audience", "subject", "body", "is_active", "created_at", "updated_at"}

// EmailTemplateRepository stores admin-editable decision emails
type EmailTemplateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEmailTemplateRepository creates a new EmailTemplateRepository
func NewEmailTemplateRepository(db *pgxpool.Pool) *EmailTemplateRepository {
	return &EmailTemplateRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// FindActive returns the active template for a decision and audience,
// or ErrTemplateNotFound when none is active.
func (r *EmailTemplateRepository) FindActive(ctx context.Context, typ models.NotificationType, audience models.ApplicationKind) (*models.EmailTemplate, error) {
	sql, args, err := r.sb.Select(emailTemplateColumns...).
		From("email_templates").
		Where(squirrel.Eq{"type": typ, "audience": audience, "is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, buildError("find active template", err)
	}

	tmpl, err := scanEmailTemplate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, dbError("find active template", err)
	}
	return tmpl, nil
}

// List returns templates, optionally narrowed by type and audience
func (r *EmailTemplateRepository) List(ctx context.Context, typ models.NotificationType, audience models.ApplicationKind) ([]*models.EmailTemplate, error) {
	b := r.sb.Select(emailTemplateColumns...).From("email_templates")
	if typ != "" {
		b = b.Where(squirrel.Eq{"type": typ})
	}
	if audience != "" {
		b = b.Where(squirrel.Eq{"audience": audience})
	}
	sql, args, err := b.OrderBy("type", "audience", "is_active DESC", "updated_at DESC").ToSql()
	if err != nil {
		return nil, buildError("list templates", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError("list templates", err)
	}
	defer rows.Close()

	templates := make([]*models.EmailTemplate, 0)
	for rows.Next() {
		tmpl, err := scanEmailTemplate(rows)
		if err != nil {
			return nil, dbError("scan template", err)
		}
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate templates", err)
	}
	return templates, nil
}

// GetByID retrieves a template by ID
func (r *EmailTemplateRepository) GetByID(ctx context.Context, id int64) (*models.EmailTemplate, error) {
	sql, args, err := r.sb.Select(emailTemplateColumns...).From("email_templates").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, buildError("get template", err)
	}

	tmpl, err := scanEmailTemplate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, dbError("get template", err)
	}
	return tmpl, nil
}

// Create inserts an inactive template
func (r *EmailTemplateRepository) Create(ctx context.Context, tmpl *models.EmailTemplate) error {
	sql, args, err := r.sb.Insert("email_templates").
		Columns("type", "audience", "subject", "body", "is_active").
		Values(tmpl.Type, tmpl.Audience, tmpl.Subject, tmpl.Body, false).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		return buildError("create template", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&tmpl.ID, &tmpl.IsActive, &tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
		return dbError("create template", err)
	}
	return nil
}

// Update replaces subject and body of a template
func (r *EmailTemplateRepository) Update(ctx context.Context, id int64, subject, body string) (*models.EmailTemplate, error) {
	sql, args, err := r.sb.Update("email_templates").
		Set("subject", subject).
		Set("body", body).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(emailTemplateColumns)).
		ToSql()
	if err != nil {
		return nil, buildError("update template", err)
	}

	tmpl, err := scanEmailTemplate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, dbError("update template", err)
	}
	return tmpl, nil
}

// Activate makes the template the only active one of its type and audience
func (r *EmailTemplateRepository) Activate(ctx context.Context, id int64) (*models.EmailTemplate, error) {
	var activated *models.EmailTemplate

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		lockSQL, lockArgs, err := r.sb.Select(emailTemplateColumns...).
			From("email_templates").
			Where(squirrel.Eq{"id": id}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return buildError("lock template", err)
		}
		tmpl, err := scanEmailTemplate(tx.QueryRow(ctx, lockSQL, lockArgs...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrTemplateNotFound
			}
			return dbError("lock template", err)
		}

		offSQL, offArgs, err := r.sb.Update("email_templates").
			Set("is_active", false).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"type": tmpl.Type, "audience": tmpl.Audience, "is_active": true}).
			Where(squirrel.NotEq{"id": id}).
			ToSql()
		if err != nil {
			return buildError("deactivate templates", err)
		}
		if _, err := tx.Exec(ctx, offSQL, offArgs...); err != nil {
			return dbError("deactivate templates", err)
		}

		onSQL, onArgs, err := r.sb.Update("email_templates").
			Set("is_active", true).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}).
			Suffix("RETURNING " + joinColumns(emailTemplateColumns)).
			ToSql()
		if err != nil {
			return buildError("activate template", err)
		}
		activated, err = scanEmailTemplate(tx.QueryRow(ctx, onSQL, onArgs...))
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "email_templates_one_active_idx") {
				return apperrors.NewCustomError(apperrors.ErrConflict, "another template was activated concurrently")
			}
			return dbError("activate template", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}

func scanEmailTemplate(row pgx.Row) (*models.EmailTemplate, error) {
	var t models.EmailTemplate
	if err := row.Scan(&t.ID, &t.Type, &t.Audience, &t.Subject, &t.Body, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
