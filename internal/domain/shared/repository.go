package shared

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination describes a requested page. OrderBy and OrderDir are
// validated against a per-repository whitelist.
type Pagination struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// Normalize clamps page and page size into valid ranges
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset of the page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Paginated represents a page of results
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a paginated result
func NewPaginated[T any](items []T, total int64, p Pagination) Paginated[T] {
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
	}
}
