package pagination

// CustomConfig assembles a strategy from closures, for sources whose
// pagination does not fit the built-ins. Merge behavior (dedup, sort) and the
// fetch-more decision can each be overridden independently; unset fields fall
// back to naive append and "always more".
type CustomConfig[T any] struct {
	// QueryParamsFunc is required.
	QueryParamsFunc func(itemsLoaded int, lastItem *T) map[string]any
	// MergeFunc combines a new page into the accumulated items. Defaults to
	// append(old, new...).
	MergeFunc func(newItems []T, oldItems []T) []T
	// MoreFunc decides, from the freshly fetched page, whether another page
	// may exist. Defaults to always true.
	MoreFunc func(newItems []T) bool

	noMore bool
}

// QueryParams delegates to QueryParamsFunc.
func (c *CustomConfig[T]) QueryParams(itemsLoaded int, lastItem *T) map[string]any {
	if c.QueryParamsFunc == nil {
		return map[string]any{}
	}
	return c.QueryParamsFunc(itemsLoaded, lastItem)
}

// Merge combines the page via MergeFunc and updates the fetch-more decision
// via MoreFunc.
func (c *CustomConfig[T]) Merge(newItems []T, oldItems []T) []T {
	if c.MoreFunc != nil {
		c.noMore = !c.MoreFunc(newItems)
	}
	if c.MergeFunc != nil {
		return c.MergeFunc(newItems, oldItems)
	}
	return append(oldItems, newItems...)
}

// CanFetchMore reports the last MoreFunc decision, or true if none has run.
func (c *CustomConfig[T]) CanFetchMore() bool {
	return !c.noMore
}

// Reset assumes more data is available again.
func (c *CustomConfig[T]) Reset() {
	c.noMore = false
}
