package services

import (
	"strconv"

	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/app/repositories"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/helpers"
	"github.com/yigit/hackathon/internal/pkg/validation"
)

// requireText records a problem when value is blank or longer than max runes
func requireText(verr *apperrors.ValidationError, field, value string, max int) {
	if value == "" {
		verr.Add(field, field+" is required")
		return
	}
	if !validation.NewStringValidation(value).WithMaxLength(max).Validate() {
		verr.Add(field, field+" must be at most "+strconv.Itoa(max)+" characters")
	}
}

// validateFilter repeats the query binding rules for callers that skip gin, such as hackctl
func validateFilter(filter dto.ApplicationFilter) error {
	verr := apperrors.NewValidationError()
	if filter.Status != "" && !filter.Status.IsValid() {
		verr.Add("status", "status must be one of: PENDING ACCEPTED REJECTED")
	}
	if filter.Starred != "" && filter.StarredFilter() == nil {
		verr.Add("starred", "starred must be true or false")
	}
	return verr.OrNil()
}

// pagedQuery turns list parameters into a repository query with normalized paging
func pagedQuery(filter dto.ApplicationFilter) (q repositories.ListQuery, page, limit int, err error) {
	if err = validateFilter(filter); err != nil {
		return q, 0, 0, err
	}

	page = helpers.NormalizePage(filter.Page)
	limit = helpers.NormalizeLimit(filter.Limit)
	offset, size := helpers.CalculateOffsetLimit(page, limit)

	q = repositories.ListQuery{
		Status:  filter.Status,
		Starred: filter.StarredFilter(),
		Search:  filter.Search,
		Limit:   size,
		Offset:  offset,
	}
	return q, page, limit, nil
}
