package model

// Ptr returns a pointer to v. Handy for filling optional questionnaire fields.
func Ptr[T any](v T) *T {
	return &v
}

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Limit returns the page size, defaulted and capped.
func (p Pagination) Limit() int {
	switch {
	case p.PageSize <= 0:
		return defaultPageSize
	case p.PageSize > maxPageSize:
		return maxPageSize
	default:
		return p.PageSize
	}
}
