// Package syncloader reconciles a locally cached value with a remote source.
// A Loader owns the latest value, tracks local/remote load progress, refreshes
// automatically when the value goes stale, and (in its paged form) extends
// collection values incrementally through a pagination strategy.
package syncloader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-syncloader/pkg/clock"
	"github.com/illmade-knight/go-syncloader/pkg/loadstate"
	"github.com/illmade-knight/go-syncloader/pkg/source"
	"github.com/illmade-knight/go-syncloader/pkg/staleness"
)

// Config holds the collaborators and policy for a Loader.
type Config[T any] struct {
	// Handler supplies the local and remote I/O capabilities. Required.
	Handler source.Handler[T]
	// Refresh enables automatic staleness-driven refreshing. Optional.
	Refresh staleness.RefreshConfig
	// Signal is the host's foreground/background source. Only subscribed to
	// when Refresh is set. Optional.
	Signal staleness.Signal
	// UpdateOnInit forces a remote load during Initialize even when local
	// data was found.
	UpdateOnInit bool
	// ShowLocalDataOnError keeps previously held non-empty data visible when
	// a remote load fails, recording the error only on the load state.
	ShowLocalDataOnError bool
	// Clock defaults to the system clock.
	Clock clock.Clock
}

// Loader is the non-paginated orchestrator for a single cached value.
type Loader[T any] struct {
	cfg     Config[T]
	handler source.Handler[T]
	tracker *loadstate.Tracker
	stream  *ValueStream[T]
	sched   *staleness.Scheduler
	clk     clock.Clock
	logger  zerolog.Logger

	mu            sync.Mutex
	pendingReason loadstate.FetchReason

	// remoteRead and onFullReload are seams for the paged loader: the full
	// remote reload path and the pre-reload cancellation hook.
	remoteRead   func(ctx context.Context) (T, error)
	onFullReload func()
}

// New creates a Loader. The handler is required; everything else is optional.
func New[T any](cfg Config[T], logger zerolog.Logger) (*Loader[T], error) {
	if cfg.Handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewRealClock()
	}
	l := &Loader[T]{
		cfg:     cfg,
		handler: cfg.Handler,
		tracker: loadstate.NewTracker(logger),
		stream:  NewValueStream(cfg.Handler.EmptyValue()),
		clk:     cfg.Clock,
		logger:  logger.With().Str("component", "Loader").Logger(),
	}
	l.remoteRead = cfg.Handler.ReadRemote

	sched, err := staleness.NewScheduler(cfg.Refresh, l.refreshAction, cfg.Clock, logger)
	if err != nil {
		return nil, err
	}
	l.sched = sched
	return l, nil
}

// Current returns the latest published value, or the empty value before the
// first publish.
func (l *Loader[T]) Current() T {
	return l.stream.Current()
}

// Stream exposes the replay-latest value stream for subscription.
func (l *Loader[T]) Stream() *ValueStream[T] {
	return l.stream
}

// State returns the current load-state snapshot.
func (l *Loader[T]) State() loadstate.State {
	return l.tracker.Current()
}

// SubscribeState registers a load-state listener and returns its unsubscribe
// function.
func (l *Loader[T]) SubscribeState(fn loadstate.Listener) func() {
	return l.tracker.Subscribe(fn)
}

// Initialize reads local data, publishes it if present, and then performs a
// full remote load when UpdateOnInit is set or no local data was available.
// It finishes by arming the staleness scheduler. Local read failures are
// recorded and logged but never abort initialization.
func (l *Loader[T]) Initialize(ctx context.Context) error {
	l.tracker.SetLocal(loadstate.StatusLoading, nil)

	hadLocal := false
	value, err := l.handler.ReadLocal(ctx)
	switch {
	case errors.Is(err, source.ErrUnsupported):
		l.tracker.SetLocal(loadstate.StatusIdle, nil)
	case errors.Is(err, source.ErrNoLocalData):
		l.tracker.SetLocal(loadstate.StatusIdle, nil)
	case err != nil:
		l.logger.Warn().Err(err).Msg("Local read failed during initialize; continuing.")
		l.tracker.SetLocal(loadstate.StatusError, err)
	case source.IsEmpty(value, l.handler.EmptyValue()):
		// A successful read of the empty sentinel counts as no local data.
		l.tracker.SetLocal(loadstate.StatusIdle, nil)
	default:
		l.stream.Publish(value)
		l.tracker.SetLocal(loadstate.StatusLoaded, nil)
		hadLocal = true
	}

	if l.cfg.UpdateOnInit || !hadLocal {
		l.setPendingReason(loadstate.ReasonInitial)
		l.sched.Refresh(ctx)
	}

	l.sched.Start(ctx, l.cfg.Signal)
	return nil
}

// Refresh performs a full remote reload through the single-flight gate. It is
// rejected only when a non-fetch-more load is already in flight; an in-flight
// fetch-more is cancelled and superseded instead.
func (l *Loader[T]) Refresh(ctx context.Context) staleness.RefreshResult {
	st := l.tracker.Current()
	if st.IsLoading() && st.FetchReason != loadstate.ReasonFetchMore {
		now := l.clk.Now()
		return staleness.RefreshResult{
			Status:      staleness.RefreshAlreadyRunning,
			InitiatedAt: now,
			FinishedAt:  now,
		}
	}
	l.cancelFullReload()
	l.setPendingReason(loadstate.ReasonRefresh)
	return l.sched.Refresh(ctx)
}

// Reset deletes local data best-effort, publishes the empty value, cancels
// any in-flight fetch-more, and returns the load state to Idle/Idle.
func (l *Loader[T]) Reset(ctx context.Context) {
	l.cancelFullReload()

	if err := l.handler.DeleteLocal(ctx); err != nil && !errors.Is(err, source.ErrUnsupported) {
		l.logger.Warn().Err(err).Msg("Local delete failed during reset; continuing.")
	}

	l.stream.Publish(l.handler.EmptyValue())
	l.tracker.Reset()
}

// AddData publishes the value immediately and then writes it to local storage
// best-effort. This is the commit path used by refresh and fetch-more, and the
// only mutation path for local-only loaders.
func (l *Loader[T]) AddData(ctx context.Context, value T) {
	l.stream.Publish(value)

	if err := l.handler.WriteLocal(ctx, value); err != nil && !errors.Is(err, source.ErrUnsupported) {
		l.logger.Warn().Err(err).Msg("Local write failed; value published without write-through.")
	}
}

// Stale reports whether the scheduler currently considers the value stale.
func (l *Loader[T]) Stale() bool {
	return l.sched.Stale()
}

// Close stops the staleness scheduler and unsubscribes from the lifecycle
// signal. The loader must not be used after Close.
func (l *Loader[T]) Close() {
	l.sched.Stop()
}

// refreshAction is the scheduler's refresh callback: one full remote load,
// attributed to whichever operation requested it (timer ticks default to
// Refresh).
func (l *Loader[T]) refreshAction(ctx context.Context) error {
	reason := l.takePendingReason()
	return l.loadRemote(ctx, reason)
}

// loadRemote performs the full remote path: transition to loading, read,
// publish-or-suppress per the error policy, write through.
func (l *Loader[T]) loadRemote(ctx context.Context, reason loadstate.FetchReason) error {
	l.tracker.SetRemote(loadstate.StatusLoading, reason, nil)

	value, err := l.remoteRead(ctx)
	if err != nil {
		if errors.Is(err, source.ErrUnsupported) {
			// Not a failure: this handler variant has no remote side.
			l.logger.Debug().Msg("Remote read unsupported by handler.")
			l.tracker.SetRemote(loadstate.StatusIdle, reason, nil)
			return err
		}
		l.logger.Warn().Err(err).Str("reason", reason.String()).Msg("Remote load failed.")
		l.tracker.SetRemote(loadstate.StatusError, reason, err)
		l.surfaceRemoteError(err)
		return err
	}

	l.AddData(ctx, value)
	l.tracker.SetRemote(loadstate.StatusLoaded, reason, nil)
	return nil
}

// surfaceRemoteError applies the ShowLocalDataOnError policy: held non-empty
// data stays visible and the error is recorded only on the load state;
// otherwise the error replaces the published value.
func (l *Loader[T]) surfaceRemoteError(err error) {
	if l.cfg.ShowLocalDataOnError && !source.IsEmpty(l.stream.Current(), l.handler.EmptyValue()) {
		return
	}
	l.stream.PublishError(err)
}

func (l *Loader[T]) setPendingReason(reason loadstate.FetchReason) {
	l.mu.Lock()
	l.pendingReason = reason
	l.mu.Unlock()
}

func (l *Loader[T]) takePendingReason() loadstate.FetchReason {
	l.mu.Lock()
	defer l.mu.Unlock()
	reason := l.pendingReason
	l.pendingReason = loadstate.ReasonNone
	if reason == loadstate.ReasonNone {
		reason = loadstate.ReasonRefresh
	}
	return reason
}

// cancelFullReload runs the paged loader's pre-reload hook, if any.
func (l *Loader[T]) cancelFullReload() {
	l.mu.Lock()
	hook := l.onFullReload
	l.mu.Unlock()
	if hook != nil {
		hook()
	}
}
