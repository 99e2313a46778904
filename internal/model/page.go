package model

// Pagination carries the page request parsed from the query string.
type Pagination struct {
	Page int
	Size int
}

// DefaultPageSize bounds unpaginated listing requests.
const DefaultPageSize = 20

// MaxPageSize caps the size a client may request.
const MaxPageSize = 100

// Normalise clamps the pagination request to sane bounds.
func (p Pagination) Normalise() Pagination {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset converts the page request into a row offset.
func (p Pagination) Offset() int {
	return p.Page * p.Size
}

// Page is a paginated response envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
}

// NewPage assembles a page envelope from a slice and the total row count.
func NewPage[T any](content []T, p Pagination, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
	}
}
