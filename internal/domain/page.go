package domain

import "strings"

// DefaultPageSize matches the API default when size is omitted.
const DefaultPageSize = 10

// SearchFilter holds the optional predicates of an application search.
// A nil Status and a blank Query impose no restriction.
type SearchFilter struct {
	Status *Status
	Query  string
}

// Empty reports whether the filter restricts nothing beyond ownership.
func (f SearchFilter) Empty() bool {
	return f.Status == nil && strings.TrimSpace(f.Query) == ""
}

// PageRequest describes pagination and ordering. Page is zero-based.
type PageRequest struct {
	Page     int
	Size     int
	SortBy   string
	SortDesc bool
}

// DefaultPageRequest is the implicit request when no parameters arrive:
// first page, ten records, newest applied date first.
func DefaultPageRequest() PageRequest {
	return PageRequest{Page: 0, Size: DefaultPageSize, SortBy: "appliedDate", SortDesc: true}
}

// Offset converts the zero-based page index into a row offset.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page wraps one slice of an ordered result set. Every field is
// populated on every response, including empty ones.
type Page struct {
	Content       []Application
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
}

// NewPage assembles a Page, deriving TotalPages from the totals.
func NewPage(content []Application, req PageRequest, total int64) Page {
	if content == nil {
		content = []Application{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
