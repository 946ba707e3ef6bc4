// Package store provides ready-made capability backends for loaders: an
// in-memory cell, a Redis-backed local cache, Firestore remote sources
// (single-document and paginated collection reads) and a GCS object source.
// Backends implement only the capabilities their medium supports; a Composite
// stitches a local and a remote backend into one full handler.
package store

import (
	"context"
	"sync"

	"github.com/illmade-knight/go-syncloader/pkg/source"
)

// InMemoryStore is a thread-safe local-only backend holding one value. It is
// useful for tests and for loaders whose persistence is session-scoped.
type InMemoryStore[T any] struct {
	source.LocalOnly[T]

	empty T

	mu    sync.Mutex
	value T
	has   bool
}

// NewInMemoryStore creates an empty in-memory store with the given empty
// value.
func NewInMemoryStore[T any](empty T) *InMemoryStore[T] {
	return &InMemoryStore[T]{empty: empty}
}

// EmptyValue returns the configured empty value.
func (s *InMemoryStore[T]) EmptyValue() T {
	return s.empty
}

// ReadLocal returns the held value, or ErrNoLocalData if nothing has been
// written since creation or the last delete.
func (s *InMemoryStore[T]) ReadLocal(_ context.Context) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has {
		return s.empty, source.ErrNoLocalData
	}
	return s.value, nil
}

// WriteLocal stores the value.
func (s *InMemoryStore[T]) WriteLocal(_ context.Context, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.has = true
	return nil
}

// DeleteLocal clears the held value.
func (s *InMemoryStore[T]) DeleteLocal(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = s.empty
	s.has = false
	return nil
}
