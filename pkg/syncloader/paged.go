package syncloader

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-syncloader/pkg/clock"
	"github.com/illmade-knight/go-syncloader/pkg/loadstate"
	"github.com/illmade-knight/go-syncloader/pkg/pagination"
	"github.com/illmade-knight/go-syncloader/pkg/source"
	"github.com/illmade-knight/go-syncloader/pkg/staleness"
)

// PagedConfig holds the collaborators and policy for a PagedLoader.
type PagedConfig[T any] struct {
	// Handler supplies the paginated remote read plus the local capabilities.
	// Required.
	Handler source.PageHandler[T]
	// Pagination is the page-derivation and merge strategy. Required.
	Pagination pagination.Config[T]
	// Refresh, Signal, UpdateOnInit, ShowLocalDataOnError and Clock behave as
	// in Config.
	Refresh              staleness.RefreshConfig
	Signal               staleness.Signal
	UpdateOnInit         bool
	ShowLocalDataOnError bool
	Clock                clock.Clock
}

// PagedLoader extends Loader for collection values fetched page by page.
// Initialize and Refresh run the full-reload path (pagination reset, first
// page fetched into an empty collection); FetchMore extends the collection
// incrementally and can be superseded by any full reload or reset.
type PagedLoader[T any] struct {
	*Loader[[]T]

	pager   pagination.Config[T]
	handler source.PageHandler[T]

	pmu        sync.Mutex
	fetching   bool
	generation uint64
}

// NewPaged creates a PagedLoader.
func NewPaged[T any](cfg PagedConfig[T], logger zerolog.Logger) (*PagedLoader[T], error) {
	if cfg.Handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	if cfg.Pagination == nil {
		return nil, fmt.Errorf("pagination config cannot be nil")
	}
	if v, ok := cfg.Pagination.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("pagination config invalid: %w", err)
		}
	}

	base, err := New(Config[[]T]{
		Handler:              cfg.Handler,
		Refresh:              cfg.Refresh,
		Signal:               cfg.Signal,
		UpdateOnInit:         cfg.UpdateOnInit,
		ShowLocalDataOnError: cfg.ShowLocalDataOnError,
		Clock:                cfg.Clock,
	}, logger)
	if err != nil {
		return nil, err
	}

	p := &PagedLoader[T]{
		Loader:  base,
		pager:   cfg.Pagination,
		handler: cfg.Handler,
	}
	base.remoteRead = p.fullReload
	base.onFullReload = p.cancelInFlight
	base.logger = logger.With().Str("component", "PagedLoader").Logger()
	return p, nil
}

// CanFetchMore reports whether the pagination strategy expects another page.
func (p *PagedLoader[T]) CanFetchMore() bool {
	p.pmu.Lock()
	defer p.pmu.Unlock()
	return p.pager.CanFetchMore()
}

// FetchMore fetches and merges the next page. Only one fetch-more runs at a
// time; a call made while pagination is exhausted returns FetchMoreDone with
// an empty delta. A reset or full reload arriving while the page request is
// outstanding discards the late result and resolves this call as cancelled,
// so stale pages never clobber newer state.
func (p *PagedLoader[T]) FetchMore(ctx context.Context) FetchMoreResult[T] {
	initiated := p.clk.Now()

	p.pmu.Lock()
	if p.fetching {
		p.pmu.Unlock()
		return FetchMoreResult[T]{
			Status:      FetchMoreAlreadyRunning,
			InitiatedAt: initiated,
			FinishedAt:  initiated,
		}
	}
	if !p.pager.CanFetchMore() {
		p.pmu.Unlock()
		merged := p.Current()
		return FetchMoreResult[T]{
			Status:      FetchMoreDone,
			MergedItems: merged,
			InitiatedAt: initiated,
			FinishedAt:  initiated,
		}
	}
	p.fetching = true
	gen := p.generation
	p.pmu.Unlock()

	defer func() {
		p.pmu.Lock()
		p.fetching = false
		p.pmu.Unlock()
	}()

	p.tracker.SetRemote(loadstate.StatusLoading, loadstate.ReasonFetchMore, nil)

	current := p.Current()
	var lastItem *T
	if len(current) > 0 {
		lastItem = &current[len(current)-1]
	}
	params := p.pager.QueryParams(len(current), lastItem)

	newItems, err := p.handler.ReadRemotePage(ctx, params)
	finished := p.clk.Now()

	p.pmu.Lock()
	if gen != p.generation {
		p.pmu.Unlock()
		// A reset or full reload won the race; the newer state stands.
		p.logger.Debug().Msg("Fetch-more superseded; discarding late page.")
		return FetchMoreResult[T]{
			Status:      FetchMoreCancelled,
			Params:      params,
			InitiatedAt: initiated,
			FinishedAt:  finished,
		}
	}

	if err != nil {
		p.pmu.Unlock()
		p.logger.Warn().Err(err).Msg("Fetch-more failed; keeping accumulated items.")
		p.tracker.SetRemote(loadstate.StatusError, loadstate.ReasonFetchMore, err)
		return FetchMoreResult[T]{
			Status:      FetchMoreFailure,
			Params:      params,
			Err:         err,
			InitiatedAt: initiated,
			FinishedAt:  finished,
		}
	}

	merged := p.pager.Merge(newItems, current)
	more := p.pager.CanFetchMore()
	p.pmu.Unlock()

	p.AddData(ctx, merged)
	p.tracker.SetRemote(loadstate.StatusLoaded, loadstate.ReasonFetchMore, nil)

	status := FetchMoreDone
	if more {
		status = FetchMoreAvailable
	}
	return FetchMoreResult[T]{
		Status:      status,
		NewItems:    newItems,
		MergedItems: merged,
		Params:      params,
		InitiatedAt: initiated,
		FinishedAt:  finished,
	}
}

// fullReload is the base loader's remote-read seam: reset pagination and load
// the first page into an empty collection. The generation bump lives here so
// every reload path cancels an outstanding fetch-more, including initialize
// and timer-driven refreshes that reach this seam through the scheduler.
func (p *PagedLoader[T]) fullReload(ctx context.Context) ([]T, error) {
	p.pmu.Lock()
	p.generation++
	p.pager.Reset()
	params := p.pager.QueryParams(0, nil)
	p.pmu.Unlock()

	items, err := p.handler.ReadRemotePage(ctx, params)
	if err != nil {
		return nil, err
	}

	p.pmu.Lock()
	merged := p.pager.Merge(items, nil)
	p.pmu.Unlock()
	return merged, nil
}

// cancelInFlight bumps the generation so any outstanding fetch-more resolves
// as cancelled, and restores the strategy for a fresh pass.
func (p *PagedLoader[T]) cancelInFlight() {
	p.pmu.Lock()
	p.generation++
	p.pager.Reset()
	p.pmu.Unlock()
}
