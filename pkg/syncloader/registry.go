package syncloader

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-syncloader/pkg/staleness"
)

// Managed is the slice of a loader the registry needs for bulk operations.
// Both Loader and PagedLoader satisfy it.
type Managed interface {
	Refresh(ctx context.Context) staleness.RefreshResult
	Reset(ctx context.Context)
	Close()
}

// Registry tracks live loaders so a host can refresh, reset or close all of
// them at once, typically on sign-out or connectivity changes. Bulk operations
// are iteration plus delegation; the registry adds no behavior of its own.
type Registry struct {
	mu      sync.Mutex
	loaders map[string]Managed
	logger  zerolog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		loaders: make(map[string]Managed),
		logger:  logger.With().Str("component", "LoaderRegistry").Logger(),
	}
}

// Register adds a loader and returns the ID to unregister it with.
func (r *Registry) Register(l Managed) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.loaders[id] = l
	r.mu.Unlock()
	r.logger.Debug().Str("loader_id", id).Msg("Loader registered.")
	return id
}

// Unregister removes a loader. Unknown IDs are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.loaders, id)
	r.mu.Unlock()
}

// Len reports how many loaders are registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loaders)
}

// RefreshAll refreshes every registered loader and returns the per-loader
// results keyed by registration ID.
func (r *Registry) RefreshAll(ctx context.Context) map[string]staleness.RefreshResult {
	results := make(map[string]staleness.RefreshResult)
	for id, l := range r.snapshot() {
		results[id] = l.Refresh(ctx)
	}
	return results
}

// ResetAll resets every registered loader.
func (r *Registry) ResetAll(ctx context.Context) {
	for _, l := range r.snapshot() {
		l.Reset(ctx)
	}
}

// CloseAll closes and unregisters every loader.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	loaders := r.loaders
	r.loaders = make(map[string]Managed)
	r.mu.Unlock()
	for _, l := range loaders {
		l.Close()
	}
}

func (r *Registry) snapshot() map[string]Managed {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Managed, len(r.loaders))
	for id, l := range r.loaders {
		out[id] = l
	}
	return out
}
