package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseIDParam reads a numeric path parameter.
func ParseIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New("ID not found")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid ID")
	}

	return uint(id), nil
}

// ParsePagination reads page/limit query parameters with the defaults the
// list endpoints share.
func ParsePagination(ctx *gin.Context, defaultLimit int) (page int, limit int) {
	page = 1
	limit = defaultLimit

	if raw := ctx.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}

	if raw := ctx.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	return page, limit
}
