package repository

import "github.com/ytvault/archive-server-go/internal/config"

// clampPage normalizes limit/offset for listing queries.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = config.DefaultPageSize
	}
	if limit > config.MaxPageSize {
		limit = config.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
