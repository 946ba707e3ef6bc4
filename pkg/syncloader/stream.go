package syncloader

import "sync"

// Snapshot is what a ValueStream carries: either a value or the error that
// replaced it. Err is nil whenever Value is meaningful.
type Snapshot[T any] struct {
	Value T
	Err   error
}

// ValueStream is a replay-latest broadcast cell. New subscribers immediately
// receive the current snapshot, and every publish fans out to all subscribers
// in registration order.
type ValueStream[T any] struct {
	mu        sync.Mutex
	current   Snapshot[T]
	subs      map[int]func(Snapshot[T])
	order     []int
	nextID    int
	queue     []delivery[T]
	notifying bool
}

// delivery is one committed snapshot together with the subscribers registered
// at commit time.
type delivery[T any] struct {
	snap Snapshot[T]
	fns  []func(Snapshot[T])
}

// NewValueStream creates a stream holding the given initial value.
func NewValueStream[T any](initial T) *ValueStream[T] {
	return &ValueStream[T]{
		current: Snapshot[T]{Value: initial},
		subs:    make(map[int]func(Snapshot[T])),
	}
}

// Current returns the latest published value. If the stream currently holds
// an error, the value alongside it is returned (the last value set when the
// error was published).
func (s *ValueStream[T]) Current() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Value
}

// CurrentSnapshot returns the latest snapshot, including any error state.
func (s *ValueStream[T]) CurrentSnapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Publish replaces the current value and clears any error state.
func (s *ValueStream[T]) Publish(value T) {
	s.mu.Lock()
	s.broadcastLocked(Snapshot[T]{Value: value})
}

// PublishError puts the stream into an error state. The previous value is
// retained in the snapshot so late subscribers can still inspect it.
func (s *ValueStream[T]) PublishError(err error) {
	s.mu.Lock()
	s.broadcastLocked(Snapshot[T]{Value: s.current.Value, Err: err})
}

// Subscribe registers fn, immediately delivers the current snapshot to it,
// and returns a function that removes the subscription.
func (s *ValueStream[T]) Subscribe(fn func(Snapshot[T])) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)
	snap := s.current
	s.mu.Unlock()

	fn(snap)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
		for i, other := range s.order {
			if other == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// broadcastLocked commits the snapshot and queues its delivery. It must be
// entered with the mutex held. Deliveries drain from a single FIFO so
// subscribers always observe snapshots in publish order, even when a publish
// lands from another goroutine or reentrantly from a subscriber while an
// earlier delivery is still in flight.
func (s *ValueStream[T]) broadcastLocked(snap Snapshot[T]) {
	s.current = snap
	fns := make([]func(Snapshot[T]), 0, len(s.subs))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.queue = append(s.queue, delivery[T]{snap: snap, fns: fns})
	if s.notifying {
		s.mu.Unlock()
		return
	}

	s.notifying = true
	for len(s.queue) > 0 {
		d := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		for _, fn := range d.fns {
			fn(d.snap)
		}
		s.mu.Lock()
	}
	s.notifying = false
	s.mu.Unlock()
}
