package staleness_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-syncloader/pkg/clock"
	"github.com/illmade-knight/go-syncloader/pkg/source"
	"github.com/illmade-knight/go-syncloader/pkg/staleness"
)

func TestScheduler_RefreshSuccess(t *testing.T) {
	// Arrange
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	var calls atomic.Int32
	action := func(_ context.Context) error {
		calls.Add(1)
		return nil
	}
	scheduler, err := staleness.NewScheduler(nil, action, fake, zerolog.Nop())
	require.NoError(t, err)

	// Act
	result := scheduler.Refresh(context.Background())

	// Assert
	assert.Equal(t, staleness.RefreshSuccess, result.Status)
	assert.NoError(t, result.Err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, fake.Now(), scheduler.LastRefresh())
}

func TestScheduler_SingleFlight(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	release := make(chan struct{})
	action := func(_ context.Context) error {
		calls.Add(1)
		<-release
		return nil
	}
	scheduler, err := staleness.NewScheduler(nil, action, clock.NewRealClock(), zerolog.Nop())
	require.NoError(t, err)

	firstDone := make(chan staleness.RefreshResult, 1)
	go func() {
		firstDone <- scheduler.Refresh(context.Background())
	}()
	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 10*time.Millisecond, "first refresh did not start")

	// Act: a second refresh while the first is in flight.
	second := scheduler.Refresh(context.Background())
	close(release)
	first := <-firstDone

	// Assert
	assert.Equal(t, staleness.RefreshAlreadyRunning, second.Status)
	assert.Equal(t, staleness.RefreshSuccess, first.Status)
	assert.Equal(t, int32(1), calls.Load(), "the action must run exactly once")
}

func TestScheduler_FailureStillAdvancesLastRefresh(t *testing.T) {
	// Arrange
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	actionErr := errors.New("remote unavailable")
	action := func(_ context.Context) error { return actionErr }
	scheduler, err := staleness.NewScheduler(staleness.FixedPeriodConfig{Period: time.Hour}, action, fake, zerolog.Nop())
	require.NoError(t, err)

	// Act
	result := scheduler.Refresh(context.Background())

	// Assert: failure is recorded, the refresh mark advances, and the next
	// tick is scheduled exactly as after a success.
	assert.Equal(t, staleness.RefreshFailure, result.Status)
	assert.ErrorIs(t, result.Err, actionErr)
	assert.Equal(t, fake.Now(), scheduler.LastRefresh())
	assert.Equal(t, 1, fake.PendingTimers())
}

func TestScheduler_TimerDrivesAutomaticRefresh(t *testing.T) {
	// Arrange
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	var calls atomic.Int32
	action := func(_ context.Context) error {
		calls.Add(1)
		return nil
	}
	scheduler, err := staleness.NewScheduler(staleness.FixedPeriodConfig{Period: time.Hour}, action, fake, zerolog.Nop())
	require.NoError(t, err)

	scheduler.Refresh(context.Background())
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, 1, fake.PendingTimers())

	// Act: the staleness period elapses.
	fake.Advance(time.Hour)

	// Assert: the timer fired one refresh and re-armed for the next period.
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, fake.PendingTimers())
}

func TestScheduler_BackgroundSuspendsForegroundResumes(t *testing.T) {
	// Arrange
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	var calls atomic.Int32
	action := func(_ context.Context) error {
		calls.Add(1)
		return nil
	}
	scheduler, err := staleness.NewScheduler(staleness.FixedPeriodConfig{Period: time.Hour}, action, fake, zerolog.Nop())
	require.NoError(t, err)
	scheduler.Refresh(context.Background())
	require.Equal(t, 1, fake.PendingTimers())

	// Act: background cancels the timer; staleness is crossed while hidden.
	scheduler.EnteredBackground()
	assert.Equal(t, 0, fake.PendingTimers())
	fake.Advance(2 * time.Hour)
	assert.Equal(t, int32(1), calls.Load(), "no refresh may run while backgrounded")

	// Foreground with stale data refreshes immediately.
	scheduler.EnteredForeground()

	// Assert
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, fake.PendingTimers(), "next tick re-armed after the foreground refresh")
}

func TestScheduler_ForegroundBeforeStalenessReArmsRemainder(t *testing.T) {
	// Arrange
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	var calls atomic.Int32
	action := func(_ context.Context) error {
		calls.Add(1)
		return nil
	}
	scheduler, err := staleness.NewScheduler(staleness.FixedPeriodConfig{Period: time.Hour}, action, fake, zerolog.Nop())
	require.NoError(t, err)
	scheduler.Refresh(context.Background())

	scheduler.EnteredBackground()
	fake.Advance(20 * time.Minute)

	// Act
	scheduler.EnteredForeground()

	// Assert: not stale yet, so no refresh; the timer covers the remainder.
	assert.Equal(t, int32(1), calls.Load())
	require.Equal(t, 1, fake.PendingTimers())

	fake.Advance(40 * time.Minute)
	assert.Equal(t, int32(2), calls.Load())
}

func TestScheduler_UnsupportedRemoteDisablesAutomaticRefresh(t *testing.T) {
	// Arrange
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	var calls atomic.Int32
	action := func(_ context.Context) error {
		calls.Add(1)
		return source.ErrUnsupported
	}
	scheduler, err := staleness.NewScheduler(staleness.FixedPeriodConfig{Period: time.Hour}, action, fake, zerolog.Nop())
	require.NoError(t, err)

	// Act
	result := scheduler.Refresh(context.Background())

	// Assert: the failure is reported but no further automatic attempts are
	// scheduled, even across foreground transitions.
	assert.Equal(t, staleness.RefreshFailure, result.Status)
	assert.Equal(t, 0, fake.PendingTimers())

	scheduler.EnteredForeground()
	fake.Advance(3 * time.Hour)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 0, fake.PendingTimers())
}

func TestScheduler_StopCancelsTimerAndUnsubscribes(t *testing.T) {
	// Arrange
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	var calls atomic.Int32
	action := func(_ context.Context) error {
		calls.Add(1)
		return nil
	}
	scheduler, err := staleness.NewScheduler(staleness.FixedPeriodConfig{Period: time.Hour}, action, fake, zerolog.Nop())
	require.NoError(t, err)

	signal := staleness.NewAppSignal()
	scheduler.Refresh(context.Background())
	scheduler.Start(context.Background(), signal)
	require.Equal(t, 1, fake.PendingTimers())

	// Act
	scheduler.Stop()

	// Assert
	assert.Equal(t, 0, fake.PendingTimers())
	fake.Advance(3 * time.Hour)
	assert.Equal(t, int32(1), calls.Load(), "no timer may fire after Stop")

	signal.EnterBackground()
	signal.EnterForeground()
	assert.Equal(t, int32(1), calls.Load(), "lifecycle events must be ignored after Stop")
}

func TestScheduler_PanickingActionReleasesGate(t *testing.T) {
	// Arrange
	action := func(_ context.Context) error { panic("action bug") }
	scheduler, err := staleness.NewScheduler(nil, action, clock.NewRealClock(), zerolog.Nop())
	require.NoError(t, err)

	// Act
	var first staleness.RefreshResult
	require.NotPanics(t, func() {
		first = scheduler.Refresh(context.Background())
	})
	second := scheduler.Refresh(context.Background())

	// Assert
	assert.Equal(t, staleness.RefreshFailure, first.Status)
	assert.Equal(t, staleness.RefreshFailure, second.Status, "gate must be released after a panic")
}
