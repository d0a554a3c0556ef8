package shared

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Filter carries paging, ordering and equality filters for list queries.
// Repositories whitelist OrderBy and the Filters keys they understand.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Filters  map[string]any
}

// DefaultFilter is page 1 of 20, newest first
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: defaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]any{},
	}
}

// Normalize clamps paging into [1, 100] rows per page and forces OrderDir
// to asc or desc
func (f *Filter) Normalize() {
	f.Page = max(f.Page, 1)
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	f.PageSize = min(f.PageSize, maxPageSize)
	if f.OrderDir != "asc" {
		f.OrderDir = "desc"
	}
	if f.Filters == nil {
		f.Filters = map[string]any{}
	}
}

func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
