// Package staleness decides when cached data is old enough to refresh and
// serializes all refresh attempts, manual or timed, through one single-flight
// gate that suspends while the host application is backgrounded.
package staleness

import "time"

// RefreshConfig computes when the next automatic refresh is due, relative to
// the last refresh attempt. A negative delay means the data is already stale.
type RefreshConfig interface {
	// NextRefreshDelay returns how long after now the next refresh should
	// run, given when the last refresh happened. May be negative.
	NextRefreshDelay(lastRefresh time.Time, now time.Time) time.Duration
}

// StalenessOverride lets a config replace the default staleness predicate
// (delay strictly negative) with its own decision.
type StalenessOverride interface {
	IsStale(lastRefresh time.Time, now time.Time) bool
}

// IsStale reports whether data last refreshed at lastRefresh is stale at now.
// Configs implementing StalenessOverride decide themselves; otherwise data is
// stale exactly when the next refresh delay is strictly negative, so data at
// the boundary (delay zero) is still fresh.
func IsStale(cfg RefreshConfig, lastRefresh time.Time, now time.Time) bool {
	if o, ok := cfg.(StalenessOverride); ok {
		return o.IsStale(lastRefresh, now)
	}
	return cfg.NextRefreshDelay(lastRefresh, now) < 0
}

// FixedPeriodConfig marks data stale once more than Period has elapsed since
// the last refresh.
type FixedPeriodConfig struct {
	Period time.Duration
}

// NextRefreshDelay returns the time remaining until lastRefresh+Period.
func (c FixedPeriodConfig) NextRefreshDelay(lastRefresh time.Time, now time.Time) time.Duration {
	return lastRefresh.Add(c.Period).Sub(now)
}

// DailyConfig refreshes once per day at a fixed local time of day.
type DailyConfig struct {
	Hour   int
	Minute int
}

// NextRefreshDelay returns the delay until the first occurrence of the
// configured time of day strictly after the last refresh.
func (c DailyConfig) NextRefreshDelay(lastRefresh time.Time, now time.Time) time.Duration {
	next := time.Date(
		lastRefresh.Year(), lastRefresh.Month(), lastRefresh.Day(),
		c.Hour, c.Minute, 0, 0, lastRefresh.Location(),
	)
	if !next.After(lastRefresh) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
