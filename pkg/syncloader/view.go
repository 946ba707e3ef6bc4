package syncloader

import (
	"github.com/illmade-knight/go-syncloader/pkg/source"
)

// ViewState is the externally observed condition of a loader, derived from
// its load state and current value. UI layers render from this.
type ViewState int

const (
	// ViewLoading means no data is held yet and a load is in flight.
	ViewLoading ViewState = iota
	// ViewLoaded means non-empty data is held.
	ViewLoaded
	// ViewEmpty means no load is in flight and no data is held.
	ViewEmpty
	// ViewError means an error has replaced the published value.
	ViewError
)

// String returns a short name for logging.
func (v ViewState) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewLoaded:
		return "loaded"
	case ViewEmpty:
		return "empty"
	case ViewError:
		return "error"
	default:
		return "unknown"
	}
}

// ViewState derives the observed condition. Held data takes precedence over
// an in-flight load; a surfaced error takes precedence over everything (the
// value stream only enters an error state when the ShowLocalDataOnError
// policy allows it, so suppression has already been applied here).
func (l *Loader[T]) ViewState() ViewState {
	snap := l.stream.CurrentSnapshot()
	if snap.Err != nil {
		return ViewError
	}
	if !source.IsEmpty(snap.Value, l.handler.EmptyValue()) {
		return ViewLoaded
	}
	if l.tracker.Current().IsLoading() {
		return ViewLoading
	}
	return ViewEmpty
}
