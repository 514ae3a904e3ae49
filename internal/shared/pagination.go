package shared

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
)

// MaxPerPage caps the page size callers may request.
const MaxPerPage = 500

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata. A non-positive perPage returns
// every row on a single page.
func NewPagination(page, perPage, total int) Pagination {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		if total == 0 {
			return Pagination{Page: 1, Total: 0, TotalPages: 0}
		}
		return Pagination{Page: 1, PerPage: total, Total: total, TotalPages: 1}
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Bounds returns the half-open slice range covered by the current page.
func (p Pagination) Bounds() (start, end int) {
	if p.PerPage <= 0 {
		return 0, p.Total
	}
	// Pages past the end are empty; checking before multiplying keeps huge
	// page numbers from overflowing.
	if p.Page < 1 || p.Page-1 > p.Total/p.PerPage {
		return p.Total, p.Total
	}
	start = (p.Page - 1) * p.PerPage
	if start > p.Total {
		start = p.Total
	}
	end = start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// Paginate returns the page of items described by p.
func Paginate[T any](items []T, p Pagination) []T {
	start, end := p.Bounds()
	return items[start:end]
}

// ParsePageParams reads page and limit from a query string. Missing values
// yield zero; malformed or negative ones are reported.
func ParsePageParams(values url.Values) (page, limit int, err error) {
	if page, err = positiveInt(values, "page"); err != nil {
		return 0, 0, err
	}
	if limit, err = positiveInt(values, "limit"); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func positiveInt(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}
