package shared

import "math"

// Pagination contains metadata for paginated listings. Pages are 1-indexed.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// NewPagination computes pagination metadata. A page beyond the last one is
// treated as an empty page with neither a next nor a previous link.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 10
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	p := Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
	if page <= totalPages {
		p.HasNext = page < totalPages
		p.HasPrev = page > 1
	}
	return p
}

// Offset returns the row offset for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// NextPage returns the following page number, valid only when HasNext.
func (p Pagination) NextPage() int {
	return p.Page + 1
}

// PrevPage returns the preceding page number, valid only when HasPrev.
func (p Pagination) PrevPage() int {
	return p.Page - 1
}
