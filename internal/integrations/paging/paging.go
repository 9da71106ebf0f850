// Package paging walks offset/limit paginated endpoints.
package paging

import (
	"context"
	"fmt"
)

// FetchPage requests up to limit items starting at offset.
type FetchPage[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// All requests consecutive pages of pageSize starting at offset 0 and
// returns their concatenation in request order. A page shorter than pageSize
// is the last one; no total-count field is consulted.
func All[T any](ctx context.Context, pageSize int, fetch FetchPage[T]) ([]T, error) {
	if pageSize < 1 {
		return nil, fmt.Errorf("page size must be >= 1, got %d", pageSize)
	}
	var all []T
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := fetch(ctx, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("page at offset %d: %w", offset, err)
		}
		if len(page) > pageSize {
			return nil, fmt.Errorf("page at offset %d returned %d items, more than the requested %d", offset, len(page), pageSize)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		offset += pageSize
	}
}

// PageNumber converts an offset into a 1-based page number for APIs that
// paginate with page/per_page.
func PageNumber(offset, limit int) int {
	return offset/limit + 1
}
