// Package loadstate tracks the independent local and remote load progress of a
// single loader as a small observable state machine.
package loadstate

// Status is the progress of one side (local or remote) of a load.
type Status int

const (
	// StatusIdle means no operation has been attempted since creation or reset.
	StatusIdle Status = iota
	// StatusLoading means an operation is in flight.
	StatusLoading
	// StatusLoaded means the last operation completed successfully.
	StatusLoaded
	// StatusError means the last operation failed.
	StatusError
)

// String returns a short name for logging.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchReason records why remote data was last requested. It is set on the
// first remote attempt and cleared only by a full reset.
type FetchReason int

const (
	// ReasonNone means no remote operation has been attempted yet.
	ReasonNone FetchReason = iota
	// ReasonInitial marks the remote load performed during initialization.
	ReasonInitial
	// ReasonRefresh marks a manual or scheduled refresh.
	ReasonRefresh
	// ReasonFetchMore marks an incremental paginated fetch.
	ReasonFetchMore
)

// String returns a short name for logging.
func (r FetchReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonInitial:
		return "initial"
	case ReasonRefresh:
		return "refresh"
	case ReasonFetchMore:
		return "fetch_more"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of a loader's load progress. Trackers replace
// the whole value on every transition, so snapshots held by listeners never
// change under them.
type State struct {
	LocalStatus  Status
	RemoteStatus Status
	FetchReason  FetchReason
	LocalErr     error
	RemoteErr    error
}

// IsLoading reports whether either side is currently in flight.
func (s State) IsLoading() bool {
	return s.LocalStatus == StatusLoading || s.RemoteStatus == StatusLoading
}
