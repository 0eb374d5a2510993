package repositories

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/logger"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository              *UserRepository
	ApplicationRepository       *ApplicationRepository
	SchoolApplicationRepository *SchoolApplicationRepository
	EmailTemplateRepository     *EmailTemplateRepository
	EmailLogRepository          *EmailLogRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:              NewUserRepository(db),
		ApplicationRepository:       NewApplicationRepository(db),
		SchoolApplicationRepository: NewSchoolApplicationRepository(db),
		EmailTemplateRepository:     NewEmailTemplateRepository(db),
		EmailLogRepository:          NewEmailLogRepository(db),
	}
}

// ListQuery filters and pages a listing. Limit 0 returns every match.
type ListQuery struct {
	Status  models.ApplicationStatus
	Starred *bool
	Search  string
	Limit   uint64
	Offset  uint64
}

// statementBuilder is shared by every repository
func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// applyListFilter adds the status, starred and search conditions of q.
// Search is a case-insensitive substring match OR-ed across searchColumns.
func applyListFilter(b squirrel.SelectBuilder, q ListQuery, searchColumns ...string) squirrel.SelectBuilder {
	if q.Status != "" {
		b = b.Where(squirrel.Eq{"status": q.Status})
	}
	if q.Starred != nil {
		b = b.Where(squirrel.Eq{"starred": *q.Starred})
	}
	if term := strings.TrimSpace(q.Search); term != "" && len(searchColumns) > 0 {
		pattern := "%" + escapeLike(term) + "%"
		or := make(squirrel.Or, 0, len(searchColumns))
		for _, col := range searchColumns {
			or = append(or, squirrel.ILike{col: pattern})
		}
		b = b.Where(or)
	}
	return b
}

// listOrder is the fixed admin ordering: starred first, then newest submissions
var listOrder = []string{"starred DESC", "submitted_at DESC", "id DESC"}

// escapeLike escapes LIKE wildcards so the term matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// dbError wraps a driver failure as apperrors.ErrDatabase and logs it
func dbError(op string, err error) error {
	logger.Error().Err(err).Str("operation", op).Msg("Database operation failed")
	return fmt.Errorf("%w: %s: %w", apperrors.ErrDatabase, op, err)
}

// buildError reports a squirrel build failure
func buildError(op string, err error) error {
	logger.Error().Err(err).Str("operation", op).Msg("Error building SQL")
	return fmt.Errorf("%w: failed to build %s query: %w", apperrors.ErrDatabase, op, err)
}
