package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/infinito-iitp/ca-portal-api/internal/constants"
)

// PageBounds is the page size a list serves when none is asked for, and the
// most it will serve.
type PageBounds struct {
	Default int
	Max     int
}

var (
	TaskPages        = PageBounds{Default: constants.TaskPageSize, Max: constants.MaxTaskPageSize}
	ApplicationPages = PageBounds{Default: constants.ApplicationPageSize, Max: constants.MaxApplicationPageSize}
)

// PaginationParams selects the 1-based Page of Limit rows.
type PaginationParams struct {
	Page  int
	Limit int
}

// Offset is the number of rows before the page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes the page for a list of total rows.
func (p PaginationParams) Meta(total int64) PaginationResponse {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PaginationResponse{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ParsePage reads ?page and ?limit against the list's bounds. An unusable
// limit falls back to the default; an oversized one is capped at the maximum.
func ParsePage(c *gin.Context, bounds PageBounds) PaginationParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	switch {
	case err != nil || limit < 1:
		limit = bounds.Default
	case limit > bounds.Max:
		limit = bounds.Max
	}

	return PaginationParams{Page: page, Limit: limit}
}
