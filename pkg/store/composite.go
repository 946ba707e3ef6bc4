package store

import (
	"context"
	"fmt"

	"github.com/illmade-knight/go-syncloader/pkg/source"
)

// Composite assembles a full handler from a local-capability backend and a
// remote-capability backend, e.g. a RedisStore cache in front of a
// FirestoreSource. The empty value comes from the local side.
type Composite[T any] struct {
	local  source.Handler[T]
	remote source.Handler[T]
}

// NewComposite creates a Composite. Both sides are required.
func NewComposite[T any](local source.Handler[T], remote source.Handler[T]) (*Composite[T], error) {
	if local == nil {
		return nil, fmt.Errorf("local handler cannot be nil")
	}
	if remote == nil {
		return nil, fmt.Errorf("remote handler cannot be nil")
	}
	return &Composite[T]{local: local, remote: remote}, nil
}

// EmptyValue returns the local side's empty value.
func (c *Composite[T]) EmptyValue() T {
	return c.local.EmptyValue()
}

// ReadLocal delegates to the local backend.
func (c *Composite[T]) ReadLocal(ctx context.Context) (T, error) {
	return c.local.ReadLocal(ctx)
}

// WriteLocal delegates to the local backend.
func (c *Composite[T]) WriteLocal(ctx context.Context, value T) error {
	return c.local.WriteLocal(ctx, value)
}

// DeleteLocal delegates to the local backend.
func (c *Composite[T]) DeleteLocal(ctx context.Context) error {
	return c.local.DeleteLocal(ctx)
}

// ReadRemote delegates to the remote backend.
func (c *Composite[T]) ReadRemote(ctx context.Context) (T, error) {
	return c.remote.ReadRemote(ctx)
}
