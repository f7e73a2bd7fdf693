package search

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100

	// maxPage keeps (page-1)*limit far from integer overflow.
	maxPage = math.MaxInt32
)

// validatePagination never fails. A zero page or limit means "not given"
// and takes the default; anything else out of range is clamped.
func validatePagination(page int, limit int) (int, int, int) {
	if page == 0 {
		page = DefaultPage
	}
	page = min(max(page, 1), maxPage)

	if limit == 0 {
		limit = DefaultLimit
	}
	limit = min(max(limit, 1), MaxLimit)

	offset := (page - 1) * limit
	return page, limit, offset
}
