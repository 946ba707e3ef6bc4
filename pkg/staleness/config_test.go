package staleness_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/illmade-knight/go-syncloader/pkg/staleness"
)

func TestFixedPeriodConfig_StalenessBoundaryIsStrict(t *testing.T) {
	cfg := staleness.FixedPeriodConfig{Period: time.Hour}
	last := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("exactly at the boundary is not stale", func(t *testing.T) {
		assert.False(t, staleness.IsStale(cfg, last, last.Add(time.Hour)))
	})

	t.Run("past the boundary is stale", func(t *testing.T) {
		assert.True(t, staleness.IsStale(cfg, last, last.Add(time.Hour+time.Nanosecond)))
	})

	t.Run("before the boundary is not stale", func(t *testing.T) {
		assert.False(t, staleness.IsStale(cfg, last, last.Add(30*time.Minute)))
	})
}

func TestFixedPeriodConfig_NextRefreshDelay(t *testing.T) {
	cfg := staleness.FixedPeriodConfig{Period: time.Hour}
	last := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 40*time.Minute, cfg.NextRefreshDelay(last, last.Add(20*time.Minute)))
	assert.Equal(t, -time.Minute, cfg.NextRefreshDelay(last, last.Add(time.Hour+time.Minute)))
}

func TestDailyConfig_NextOccurrenceAfterLastRefresh(t *testing.T) {
	cfg := staleness.DailyConfig{Hour: 6, Minute: 30}

	t.Run("refresh earlier in the day targets the same day", func(t *testing.T) {
		last := time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)

		delay := cfg.NextRefreshDelay(last, last)

		assert.Equal(t, 90*time.Minute, delay)
	})

	t.Run("refresh after the daily time targets tomorrow", func(t *testing.T) {
		last := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

		delay := cfg.NextRefreshDelay(last, last)

		assert.Equal(t, 23*time.Hour+30*time.Minute, delay)
	})

	t.Run("delay shrinks as now advances", func(t *testing.T) {
		last := time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)

		delay := cfg.NextRefreshDelay(last, last.Add(time.Hour))

		assert.Equal(t, 30*time.Minute, delay)
	})
}

type alwaysStaleConfig struct{}

func (alwaysStaleConfig) NextRefreshDelay(_ time.Time, _ time.Time) time.Duration {
	return time.Hour
}

func (alwaysStaleConfig) IsStale(_ time.Time, _ time.Time) bool {
	return true
}

func TestIsStale_OverrideWinsOverDelaySign(t *testing.T) {
	now := time.Now()

	assert.True(t, staleness.IsStale(alwaysStaleConfig{}, now, now))
}
