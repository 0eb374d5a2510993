package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/dberrors"
)

var emailLogColumns = []string{
	"id", "application_id", "school_application_id", "type", "recipient_email", "subject",
	"sent_at", "status", "error_message", "provider_message_id",
}

// EmailLogRepository appends and reads notification audit records. Rows are never updated.
type EmailLogRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEmailLogRepository creates a new EmailLogRepository
func NewEmailLogRepository(db *pgxpool.Pool) *EmailLogRepository {
	return &EmailLogRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create appends one log record
func (r *EmailLogRepository) Create(ctx context.Context, entry *models.EmailNotificationLog) error {
	sql, args, err := r.sb.Insert("email_notification_logs").
		Columns("application_id", "school_application_id", "type", "recipient_email", "subject",
			"sent_at", "status", "error_message", "provider_message_id").
		Values(entry.ApplicationID, entry.SchoolApplicationID, entry.Type, entry.RecipientEmail, entry.Subject,
			entry.SentAt, entry.Status, entry.ErrorMessage, entry.ProviderMessageID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return buildError("create email log", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&entry.ID); err != nil {
		// The application was deleted while its decision email was in flight
		if dberrors.IsForeignKeyViolation(err) {
			if entry.SchoolApplicationID != nil {
				return apperrors.ErrSchoolApplicationNotFound
			}
			return apperrors.ErrApplicationNotFound
		}
		return dbError("create email log", err)
	}
	return nil
}

// ownerColumn picks the foreign key column for an application kind
func ownerColumn(kind models.ApplicationKind) string {
	if kind == models.KindSchool {
		return "school_application_id"
	}
	return "application_id"
}

// ListByApplication returns the attempts for one application, newest first
func (r *EmailLogRepository) ListByApplication(ctx context.Context, kind models.ApplicationKind, id uuid.UUID) ([]*models.EmailNotificationLog, error) {
	sql, args, err := r.sb.Select(emailLogColumns...).
		From("email_notification_logs").
		Where(squirrel.Eq{ownerColumn(kind): id}).
		OrderBy("sent_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, buildError("list email logs", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError("list email logs", err)
	}
	defer rows.Close()

	logs := make([]*models.EmailNotificationLog, 0)
	for rows.Next() {
		var l models.EmailNotificationLog
		if err := rows.Scan(&l.ID, &l.ApplicationID, &l.SchoolApplicationID, &l.Type, &l.RecipientEmail, &l.Subject,
			&l.SentAt, &l.Status, &l.ErrorMessage, &l.ProviderMessageID); err != nil {
			return nil, dbError("scan email log", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate email logs", err)
	}
	return logs, nil
}
