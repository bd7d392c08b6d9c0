package shared

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 500
)

type Pagination struct {
	Page     int
	PageSize int
}

// ParsePagination reads page and pageSize from the query string. Missing,
// non-numeric or non-positive values fall back to the defaults; pageSize is
// capped at MaxPageSize.
func ParsePagination(r *http.Request) Pagination {
	return Pagination{
		Page:     positiveInt(r.URL.Query().Get("page"), DefaultPage),
		PageSize: min(positiveInt(r.URL.Query().Get("pageSize"), DefaultPageSize), MaxPageSize),
	}
}

func positiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
