package repository

import "math"

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100

	DefaultLimit = 100
	MaxLimit     = 1000
)

// Window is the skip/limit pair used by plain list operations.
type Window struct {
	Skip  int
	Limit int
}

type PageRequest struct {
	Page    int
	PerPage int
}

// Offset is the number of rows skipped before the page starts.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func normalizeWindow(in Window) Window {
	skip := in.Skip
	if skip < 0 {
		skip = 0
	}
	limit := in.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Window{Skip: skip, Limit: limit}
}

func NormalizePageRequest(in PageRequest) PageRequest {
	page := in.Page
	if page < 1 {
		page = DefaultPage
	}
	perPage := in.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return PageRequest{Page: page, PerPage: perPage}
}

func CalcTotalPages(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(perPage)))
}
