package staleness

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-syncloader/pkg/clock"
	"github.com/illmade-knight/go-syncloader/pkg/source"
)

// RefreshStatus classifies the outcome of a refresh attempt.
type RefreshStatus int

const (
	// RefreshSuccess means the refresh action completed without error.
	RefreshSuccess RefreshStatus = iota
	// RefreshFailure means the refresh action returned an error.
	RefreshFailure
	// RefreshAlreadyRunning means another refresh was in flight and no new
	// work was started.
	RefreshAlreadyRunning
)

// String returns a short name for logging.
func (s RefreshStatus) String() string {
	switch s {
	case RefreshSuccess:
		return "success"
	case RefreshFailure:
		return "failure"
	case RefreshAlreadyRunning:
		return "already_running"
	default:
		return "unknown"
	}
}

// RefreshResult records one refresh attempt. It is constructed once per
// attempt and never mutated afterwards.
type RefreshResult struct {
	Status      RefreshStatus
	Err         error
	InitiatedAt time.Time
	FinishedAt  time.Time
}

// RefreshAction is the caller-supplied work a refresh performs, typically a
// loader's full remote reload.
type RefreshAction func(ctx context.Context) error

// Scheduler owns the automatic refresh timer and the single-flight gate all
// refreshes pass through. With a nil RefreshConfig it still serializes manual
// refreshes but never arms a timer and never subscribes to the lifecycle
// signal.
type Scheduler struct {
	cfg    RefreshConfig
	action RefreshAction
	clk    clock.Clock
	logger zerolog.Logger

	mu           sync.Mutex
	refreshing   bool
	lastRefresh  time.Time
	timer        clock.Timer
	backgrounded bool
	stopped      bool
	autoDisabled bool
	unsubscribe  func()
	baseCtx      context.Context
}

// NewScheduler creates a Scheduler. cfg may be nil to disable automatic
// refreshing entirely; action must not be nil.
func NewScheduler(cfg RefreshConfig, action RefreshAction, clk clock.Clock, logger zerolog.Logger) (*Scheduler, error) {
	if action == nil {
		return nil, fmt.Errorf("refresh action cannot be nil")
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Scheduler{
		cfg:     cfg,
		action:  action,
		clk:     clk,
		logger:  logger.With().Str("component", "StalenessScheduler").Logger(),
		baseCtx: context.Background(),
	}, nil
}

// Start records the base context for timer-driven refreshes, subscribes to
// the lifecycle signal if one is supplied, and arms the first timer. It does
// not refresh by itself; callers run their initial load through Refresh.
func (s *Scheduler) Start(ctx context.Context, signal Signal) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.stopped = false
	if s.cfg != nil && signal != nil && s.unsubscribe == nil {
		s.unsubscribe = signal.Subscribe(s)
	}
	s.armLocked()
	s.mu.Unlock()
}

// Stop cancels any pending timer and unsubscribes from the lifecycle signal.
// No timer fires after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.cancelTimerLocked()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	s.logger.Debug().Msg("Scheduler stopped.")
}

// LastRefresh returns when the most recent refresh attempt finished, or the
// zero time if none has run.
func (s *Scheduler) LastRefresh() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefresh
}

// Stale reports whether the scheduler currently considers its data stale.
// Always false without a RefreshConfig.
func (s *Scheduler) Stale() bool {
	if s.cfg == nil {
		return false
	}
	s.mu.Lock()
	last := s.lastRefresh
	s.mu.Unlock()
	return IsStale(s.cfg, last, s.clk.Now())
}

// Refresh runs the refresh action through the single-flight gate. If another
// refresh is in flight it returns immediately with RefreshAlreadyRunning and
// starts no new work. The last-refresh mark advances whether the action
// succeeds or fails, so a broken source does not busy-loop the timer.
func (s *Scheduler) Refresh(ctx context.Context) RefreshResult {
	initiated := s.clk.Now()

	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		s.logger.Debug().Msg("Refresh already in flight; skipping.")
		return RefreshResult{Status: RefreshAlreadyRunning, InitiatedAt: initiated, FinishedAt: initiated}
	}
	s.refreshing = true
	s.cancelTimerLocked()
	s.mu.Unlock()

	err := s.runAction(ctx)
	finished := s.clk.Now()

	s.mu.Lock()
	s.lastRefresh = finished
	if errors.Is(err, source.ErrUnsupported) {
		// The source categorically cannot serve remote data; further
		// automatic attempts would fail identically.
		s.autoDisabled = true
		s.logger.Debug().Msg("Remote reads unsupported; automatic refresh disabled.")
	}
	s.refreshing = false
	s.armLocked()
	s.mu.Unlock()

	result := RefreshResult{InitiatedAt: initiated, FinishedAt: finished}
	if err != nil {
		result.Status = RefreshFailure
		result.Err = err
	} else {
		result.Status = RefreshSuccess
	}
	return result
}

// runAction invokes the action, converting a panic into an error so a faulty
// source can never leave the busy flag set.
func (s *Scheduler) runAction(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh action panicked: %v", r)
			s.logger.Error().Interface("panic", r).Msg("Refresh action panicked.")
		}
	}()
	return s.action(ctx)
}

// EnteredForeground implements Observer. Stale data refreshes immediately;
// otherwise the timer is re-armed for the remaining delay.
func (s *Scheduler) EnteredForeground() {
	s.mu.Lock()
	s.backgrounded = false
	stale := s.cfg != nil && !s.autoDisabled && !s.stopped &&
		IsStale(s.cfg, s.lastRefresh, s.clk.Now())
	if !stale {
		s.armLocked()
	}
	ctx := s.baseCtx
	s.mu.Unlock()

	if stale {
		s.logger.Debug().Msg("Stale on foreground; refreshing.")
		s.Refresh(ctx)
	}
}

// EnteredBackground implements Observer. The pending timer is cancelled and no
// new timers start until the next foreground transition.
func (s *Scheduler) EnteredBackground() {
	s.mu.Lock()
	s.backgrounded = true
	s.cancelTimerLocked()
	s.mu.Unlock()
	s.logger.Debug().Msg("Backgrounded; automatic refresh suspended.")
}

// armLocked schedules the next automatic tick. Already-stale data triggers an
// immediate asynchronous refresh; a delay of zero or more arms a one-shot
// timer (staleness is strictly "past due", never "exactly due").
func (s *Scheduler) armLocked() {
	s.cancelTimerLocked()
	if s.cfg == nil || s.stopped || s.backgrounded || s.autoDisabled || s.refreshing {
		return
	}
	now := s.clk.Now()
	ctx := s.baseCtx
	if IsStale(s.cfg, s.lastRefresh, now) {
		go s.Refresh(ctx)
		return
	}
	delay := s.cfg.NextRefreshDelay(s.lastRefresh, now)
	s.timer = s.clk.AfterFunc(delay, func() {
		s.Refresh(ctx)
	})
}

func (s *Scheduler) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
