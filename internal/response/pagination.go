package response

import "math"

const (
	// DefaultPage is used when the requested page is missing or non-positive.
	DefaultPage = 1
	// DefaultLimit is used when the requested limit is missing or non-positive.
	DefaultLimit = 10
	// MaxLimit caps how many rows a single page may request.
	MaxLimit = 100
)

// Pagination is the pagination block merged into the meta of a paginated response.
type Pagination struct {
	Limit       int   `json:"limit"`
	Current     int   `json:"current"`
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	HasNextPage bool  `json:"hasNextPage"`
	TotalPages  int64 `json:"totalPages"`
}

// NormalizePage applies the default page and limit to non-positive inputs,
// caps the limit at MaxLimit and caps the page so its row offset fits in an int.
func NormalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

// TotalPages returns how many pages of limit rows hold total rows.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 || total <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return pages
}

// NewPagination computes the pagination block for a page of current items out of total.
// page and limit are expected to be normalized already.
func NewPagination(page, limit int, total int64, current int) Pagination {
	page, limit = NormalizePage(page, limit)

	totalPages := TotalPages(total, limit)

	return Pagination{
		Limit:       limit,
		Current:     current,
		Total:       total,
		Page:        page,
		HasNextPage: int64(page) < totalPages,
		TotalPages:  totalPages,
	}
}

// Offset returns the row offset of page for the given limit.
func Offset(page, limit int) int {
	page, limit = NormalizePage(page, limit)
	return (page - 1) * limit
}
