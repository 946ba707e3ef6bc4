// Package pagination derives next-page query parameters and merges page
// results for the three common pagination styles: page-number, offset/limit
// and cursor. Custom strategies plug in through the same Config contract.
package pagination

import "fmt"

// Well-known query parameter keys produced by the built-in strategies.
const (
	ParamPage     = "page"
	ParamPageSize = "pageSize"
	ParamOffset   = "offset"
	ParamLimit    = "limit"
	ParamCursor   = "cursor"
)

// Config is one pagination strategy. A Config instance belongs to a single
// loader, which serializes all calls; implementations do not need their own
// locking.
type Config[T any] interface {
	// QueryParams returns the parameters for the next page given how many
	// items have been accumulated and the last accumulated item (nil when
	// none have been loaded yet).
	QueryParams(itemsLoaded int, lastItem *T) map[string]any
	// Merge combines a freshly fetched page into the accumulated collection
	// and updates the fetch-more decision as a side effect.
	Merge(newItems []T, oldItems []T) []T
	// CanFetchMore reports whether another page may exist.
	CanFetchMore() bool
	// Reset returns the strategy to its initial state (more data assumed).
	// Loaders call it on every full reload or clear, never on fetch-more.
	Reset()
}

// PageConfig numbers pages of a fixed size. With ZeroBased false (the
// default) the first page is 1.
type PageConfig[T any] struct {
	PageSize  int
	ZeroBased bool

	noMore bool
}

// Validate rejects a non-positive page size, which would make the page
// derivation divide by zero.
func (c *PageConfig[T]) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	return nil
}

// QueryParams derives the next page number from the accumulated item count:
// the number of pages already covered, rounded up.
func (c *PageConfig[T]) QueryParams(itemsLoaded int, _ *T) map[string]any {
	page := (itemsLoaded + c.PageSize - 1) / c.PageSize
	if !c.ZeroBased {
		page++
	}
	return map[string]any{ParamPage: page, ParamPageSize: c.PageSize}
}

// Merge appends the new page. A short page marks the source exhausted.
func (c *PageConfig[T]) Merge(newItems []T, oldItems []T) []T {
	c.noMore = len(newItems) != c.PageSize
	return append(oldItems, newItems...)
}

// CanFetchMore reports whether another full page may exist.
func (c *PageConfig[T]) CanFetchMore() bool {
	return !c.noMore
}

// Reset assumes more data is available again.
func (c *PageConfig[T]) Reset() {
	c.noMore = false
}

// OffsetConfig requests items by absolute offset and limit.
type OffsetConfig[T any] struct {
	Limit int

	noMore bool
}

// Validate rejects a non-positive limit.
func (c *OffsetConfig[T]) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	return nil
}

// QueryParams uses the accumulated item count as the next offset.
func (c *OffsetConfig[T]) QueryParams(itemsLoaded int, _ *T) map[string]any {
	return map[string]any{ParamOffset: itemsLoaded, ParamLimit: c.Limit}
}

// Merge appends the new page. A short page marks the source exhausted.
func (c *OffsetConfig[T]) Merge(newItems []T, oldItems []T) []T {
	c.noMore = len(newItems) != c.Limit
	return append(oldItems, newItems...)
}

// CanFetchMore reports whether another full page may exist.
func (c *OffsetConfig[T]) CanFetchMore() bool {
	return !c.noMore
}

// Reset assumes more data is available again.
func (c *OffsetConfig[T]) Reset() {
	c.noMore = false
}

// CursorConfig requests items after an opaque cursor extracted from the last
// item of the previous page.
type CursorConfig[T any] struct {
	Limit int
	// GetCursor extracts the cursor value from an item. It is never invoked
	// for the first page.
	GetCursor func(item T) any

	noMore bool
}

// Validate rejects a non-positive limit and a missing cursor extractor.
func (c *CursorConfig[T]) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if c.GetCursor == nil {
		return fmt.Errorf("cursor extractor cannot be nil")
	}
	return nil
}

// QueryParams passes a nil cursor for the first page; the extraction callback
// runs only once at least one item has been accumulated.
func (c *CursorConfig[T]) QueryParams(_ int, lastItem *T) map[string]any {
	var cursor any
	if lastItem != nil {
		cursor = c.GetCursor(*lastItem)
	}
	return map[string]any{ParamCursor: cursor, ParamLimit: c.Limit}
}

// Merge appends the new page. A short page marks the source exhausted.
func (c *CursorConfig[T]) Merge(newItems []T, oldItems []T) []T {
	c.noMore = len(newItems) != c.Limit
	return append(oldItems, newItems...)
}

// CanFetchMore reports whether another full page may exist.
func (c *CursorConfig[T]) CanFetchMore() bool {
	return !c.noMore
}

// Reset assumes more data is available again.
func (c *CursorConfig[T]) Reset() {
	c.noMore = false
}
