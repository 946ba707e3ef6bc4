package syncloader

import "time"

// FetchMoreStatus classifies the outcome of a fetch-more attempt.
type FetchMoreStatus int

const (
	// FetchMoreAvailable means the page was merged and another page may exist.
	FetchMoreAvailable FetchMoreStatus = iota
	// FetchMoreDone means the page was merged (possibly empty) and the source
	// is exhausted.
	FetchMoreDone
	// FetchMoreFailure means the page fetch failed; accumulated data is kept.
	FetchMoreFailure
	// FetchMoreAlreadyRunning means another fetch-more was in flight.
	FetchMoreAlreadyRunning
	// FetchMoreCancelled means a reset or full reload superseded this fetch
	// while its page request was outstanding; the late result was discarded.
	FetchMoreCancelled
)

// String returns a short name for logging.
func (s FetchMoreStatus) String() string {
	switch s {
	case FetchMoreAvailable:
		return "more_available"
	case FetchMoreDone:
		return "done"
	case FetchMoreFailure:
		return "failure"
	case FetchMoreAlreadyRunning:
		return "already_running"
	case FetchMoreCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// FetchMoreResult records one fetch-more attempt. NewItems and MergedItems
// are populated only when the status implies data was applied.
type FetchMoreResult[T any] struct {
	Status      FetchMoreStatus
	NewItems    []T
	MergedItems []T
	Params      map[string]any
	Err         error
	InitiatedAt time.Time
	FinishedAt  time.Time
}
