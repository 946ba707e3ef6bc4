package source

import "context"

// LocalOnly is an embeddable base for handlers that have no remote source.
// ReadRemote always fails with ErrUnsupported; the local operations are left
// to the embedding type.
type LocalOnly[T any] struct{}

// ReadRemote always returns ErrUnsupported.
func (LocalOnly[T]) ReadRemote(_ context.Context) (T, error) {
	var zero T
	return zero, ErrUnsupported
}

// RemoteOnly is an embeddable base for handlers without local storage. All
// local operations fail with ErrUnsupported.
type RemoteOnly[T any] struct{}

// ReadLocal always returns ErrUnsupported.
func (RemoteOnly[T]) ReadLocal(_ context.Context) (T, error) {
	var zero T
	return zero, ErrUnsupported
}

// WriteLocal always returns ErrUnsupported.
func (RemoteOnly[T]) WriteLocal(_ context.Context, _ T) error {
	return ErrUnsupported
}

// DeleteLocal always returns ErrUnsupported.
func (RemoteOnly[T]) DeleteLocal(_ context.Context) error {
	return ErrUnsupported
}

// FuncHandler assembles a Handler from optional closures. A nil closure makes
// the corresponding operation fail with ErrUnsupported, so capability variants
// can be expressed without defining a new type.
type FuncHandler[T any] struct {
	Empty          T
	ReadLocalFunc  func(ctx context.Context) (T, error)
	ReadRemoteFunc func(ctx context.Context) (T, error)
	WriteLocalFunc func(ctx context.Context, value T) error
	DeleteFunc     func(ctx context.Context) error
}

// EmptyValue returns the configured empty value.
func (h *FuncHandler[T]) EmptyValue() T {
	return h.Empty
}

// ReadLocal invokes ReadLocalFunc, or fails with ErrUnsupported if unset.
func (h *FuncHandler[T]) ReadLocal(ctx context.Context) (T, error) {
	if h.ReadLocalFunc == nil {
		var zero T
		return zero, ErrUnsupported
	}
	return h.ReadLocalFunc(ctx)
}

// ReadRemote invokes ReadRemoteFunc, or fails with ErrUnsupported if unset.
func (h *FuncHandler[T]) ReadRemote(ctx context.Context) (T, error) {
	if h.ReadRemoteFunc == nil {
		var zero T
		return zero, ErrUnsupported
	}
	return h.ReadRemoteFunc(ctx)
}

// WriteLocal invokes WriteLocalFunc, or fails with ErrUnsupported if unset.
func (h *FuncHandler[T]) WriteLocal(ctx context.Context, value T) error {
	if h.WriteLocalFunc == nil {
		return ErrUnsupported
	}
	return h.WriteLocalFunc(ctx, value)
}

// DeleteLocal invokes DeleteFunc, or fails with ErrUnsupported if unset.
func (h *FuncHandler[T]) DeleteLocal(ctx context.Context) error {
	if h.DeleteFunc == nil {
		return ErrUnsupported
	}
	return h.DeleteFunc(ctx)
}

// PageFuncHandler assembles a PageHandler for item type T from closures.
type PageFuncHandler[T any] struct {
	FuncHandler[[]T]
	ReadPageFunc func(ctx context.Context, params map[string]any) ([]T, error)
}

// ReadRemotePage invokes ReadPageFunc, or fails with ErrUnsupported if unset.
func (h *PageFuncHandler[T]) ReadRemotePage(ctx context.Context, params map[string]any) ([]T, error) {
	if h.ReadPageFunc == nil {
		return nil, ErrUnsupported
	}
	return h.ReadPageFunc(ctx, params)
}
