// internal/app/system/paging/paging.go
// Package paging parses page/limit query parameters for list endpoints.
package paging

import (
	"net/http"
	"strconv"
)

// DefaultLimit is the page size used when the caller does not ask for
// one.
const DefaultLimit = 20

// MaxLimit caps the page size a caller may request.
const MaxLimit = 100

// Page holds a parsed 1-based page number and a capped page size.
type Page struct {
	Number int
	Limit  int
}

// Parse extracts "page" and "limit" query parameters, falling back to
// page 1 and DefaultLimit on absent or invalid values.
func Parse(r *http.Request) Page {
	p := Page{Number: 1, Limit: DefaultLimit}
	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.Number = n
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.Limit = n
			if p.Limit > MaxLimit {
				p.Limit = MaxLimit
			}
		}
	}
	return p
}

// Skip returns the number of documents to skip for this page.
func (p Page) Skip() int64 { return int64(p.Number-1) * int64(p.Limit) }

// TotalPages returns the page count for total documents.
func (p Page) TotalPages(total int64) int64 {
	if total == 0 {
		return 0
	}
	return (total + int64(p.Limit) - 1) / int64(p.Limit)
}
