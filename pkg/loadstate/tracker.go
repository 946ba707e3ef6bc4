package loadstate

import (
	"sync"

	"github.com/rs/zerolog"
)

// Listener receives state transitions. The previous snapshot accompanies the
// new one so observers can diff without keeping their own copy.
type Listener func(current State, previous State)

// Tracker holds the current State and notifies subscribers on every
// transition, in the order transitions occur. A listener that panics is
// recovered and logged; it never takes the tracker down.
type Tracker struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
	queue     []transition
	notifying bool
	logger    zerolog.Logger
}

// transition is one committed state change together with the listener set that
// was registered at commit time.
type transition struct {
	next      State
	prev      State
	listeners []Listener
}

// NewTracker creates a Tracker in the Idle/Idle state.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		listeners: make(map[int]Listener),
		logger:    logger.With().Str("component", "LoadStateTracker").Logger(),
	}
}

// Current returns the latest snapshot.
func (t *Tracker) Current() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetLocal transitions the local side. err is recorded only for StatusError
// and cleared otherwise.
func (t *Tracker) SetLocal(status Status, err error) {
	t.mu.Lock()
	prev := t.state
	next := prev
	next.LocalStatus = status
	next.LocalErr = nil
	if status == StatusError {
		next.LocalErr = err
	}
	t.commit(next, prev)
}

// SetRemote transitions the remote side and records why remote data was
// requested. err is recorded only for StatusError and cleared otherwise.
func (t *Tracker) SetRemote(status Status, reason FetchReason, err error) {
	t.mu.Lock()
	prev := t.state
	next := prev
	next.RemoteStatus = status
	next.FetchReason = reason
	next.RemoteErr = nil
	if status == StatusError {
		next.RemoteErr = err
	}
	t.commit(next, prev)
}

// Reset returns both sides to Idle and clears errors and the fetch reason.
func (t *Tracker) Reset() {
	t.mu.Lock()
	prev := t.state
	t.commit(State{}, prev)
}

// Subscribe registers a listener and returns a function that removes it.
func (t *Tracker) Subscribe(fn Listener) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
	}
}

// commit stores the next state and queues its notification. It must be entered
// with the mutex held. Deliveries drain from a single FIFO so listeners always
// observe transitions in commit order, even when a transition is committed
// from another goroutine or reentrantly from a listener while an earlier
// notification is still being delivered.
func (t *Tracker) commit(next State, prev State) {
	t.state = next
	listeners := make([]Listener, 0, len(t.listeners))
	for _, fn := range t.listeners {
		listeners = append(listeners, fn)
	}
	t.queue = append(t.queue, transition{next: next, prev: prev, listeners: listeners})
	if t.notifying {
		// The draining goroutine will deliver this transition after the one
		// currently in flight.
		t.mu.Unlock()
		return
	}

	t.notifying = true
	for len(t.queue) > 0 {
		tr := t.queue[0]
		t.queue = t.queue[1:]
		t.mu.Unlock()
		for _, fn := range tr.listeners {
			t.safeNotify(fn, tr.next, tr.prev)
		}
		t.mu.Lock()
	}
	t.notifying = false
	t.mu.Unlock()
}

func (t *Tracker) safeNotify(fn Listener, next State, prev State) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error().Interface("panic", r).Msg("State listener panicked; continuing.")
		}
	}()
	fn(next, prev)
}
