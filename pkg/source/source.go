// Package source defines the capability contract a caller supplies to a
// loader: where data is read from, where it is cached locally, and which of
// those operations a given backend actually supports.
package source

import (
	"context"
	"errors"
)

// ErrUnsupported marks an operation a handler variant intentionally does not
// implement. Loaders treat it as expected and skip the related bookkeeping
// rather than surfacing a failure.
var ErrUnsupported = errors.New("operation not supported by this handler")

// ErrNoLocalData marks a local read that succeeded but found nothing: either
// the backend had no entry, or the stored value equals the handler's empty
// value. It is an absence signal, not an error condition.
var ErrNoLocalData = errors.New("no local data available")

// Handler is the full capability set for a single cached value of type T.
// Each operation is independently optional: unsupported operations return
// ErrUnsupported. EmptyValue is both the reset target and the sentinel a
// loader compares against to decide whether local data exists.
type Handler[T any] interface {
	// EmptyValue returns the zero/reset value for the data.
	EmptyValue() T
	// ReadLocal fetches the locally cached value.
	ReadLocal(ctx context.Context) (T, error)
	// ReadRemote fetches the value from the remote source of truth.
	ReadRemote(ctx context.Context) (T, error)
	// WriteLocal stores the value in the local cache.
	WriteLocal(ctx context.Context, value T) error
	// DeleteLocal removes the locally cached value.
	DeleteLocal(ctx context.Context) error
}

// PageHandler extends Handler for collection-valued data that is fetched
// incrementally. ReadRemotePage is invoked in place of ReadRemote, with the
// query parameters produced by the active pagination strategy.
type PageHandler[T any] interface {
	Handler[[]T]
	// ReadRemotePage fetches one page of items for the given query parameters.
	ReadRemotePage(ctx context.Context, params map[string]any) ([]T, error)
}
