package domain

// PaginationParams carries page/limit values from the HTTP layer to the
// service layer. Page is 1-indexed. Limit is capped at 200.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional query values.
// Nil pointers fall back to page=1, limit=50.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 50}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, 200)
	}
	return p
}

// Offset returns the zero-based index of the first item on the page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Window returns the [lo, hi) bounds of the page within a slice of n items.
func (p PaginationParams) Window(n int) (lo, hi int) {
	lo = min(p.Offset(), n)
	hi = min(lo+p.Limit, n)
	return lo, hi
}
