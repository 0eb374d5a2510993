package helpers

import (
	"math"

	"github.com/yigit/hackathon/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1 // Default page is 1-based

	// MaxPage keeps (page-1)*MaxPageSize within int
	MaxPage = math.MaxInt / MaxPageSize
)

// NormalizePage returns page clamped to [DefaultPage, MaxPage]
func NormalizePage(page int) int {
	switch {
	case page < 1:
		return DefaultPage
	case page > MaxPage:
		return MaxPage
	default:
		return page
	}
}

// NormalizeLimit clamps a requested page size to [1, MaxPageSize].
// Zero means "not supplied" and yields DefaultPageSize.
func NormalizeLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultPageSize
	case limit < 1:
		return 1
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
func CalculateOffsetLimit(page, size int) (offset uint64, limit uint64) {
	page = NormalizePage(page)
	size = NormalizeLimit(size)
	return uint64((page - 1) * size), uint64(size)
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page and limit are expected to be normalized already.
func NewPaginationInfo(totalCount int64, page, limit int) dto.PaginationInfo {
	page = NormalizePage(page)
	limit = NormalizeLimit(limit)

	totalPages := 0
	if totalCount > 0 {
		totalPages = int(math.Ceil(float64(totalCount) / float64(limit)))
	}

	return dto.PaginationInfo{
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
