package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/hackathon/internal/app/models"
)

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// buildCountByStatusQuery counts rows per status with FILTER aggregates
func buildCountByStatusQuery(sb squirrel.StatementBuilderType, table string) squirrel.SelectBuilder {
	return sb.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE status = 'PENDING')",
		"COUNT(*) FILTER (WHERE status = 'ACCEPTED')",
		"COUNT(*) FILTER (WHERE status = 'REJECTED')",
		"COUNT(*) FILTER (WHERE starred)",
	).From(table)
}

func countByStatus(ctx context.Context, db *pgxpool.Pool, sb squirrel.StatementBuilderType, table string) (models.StatusCounts, error) {
	var counts models.StatusCounts

	sql, args, err := buildCountByStatusQuery(sb, table).ToSql()
	if err != nil {
		return counts, buildError("count "+table+" by status", err)
	}

	err = db.QueryRow(ctx, sql, args...).Scan(
		&counts.Total, &counts.Pending, &counts.Accepted, &counts.Rejected, &counts.Starred,
	)
	if err != nil {
		return counts, dbError("count "+table+" by status", err)
	}
	return counts, nil
}
