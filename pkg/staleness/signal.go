package staleness

import "sync"

// Observer receives foreground/background transitions from the host
// application. The scheduler implements this to pause timers while the
// application is not visible.
type Observer interface {
	EnteredForeground()
	EnteredBackground()
}

// Signal is the two-event lifecycle source a host supplies. The engine never
// depends on any particular UI toolkit, only on this contract.
type Signal interface {
	// Subscribe registers an observer and returns a function that removes it.
	Subscribe(o Observer) func()
}

// AppSignal is a basic broadcast implementation of Signal for hosts that do
// not already have one. Calls fan out to observers in registration order.
type AppSignal struct {
	mu        sync.Mutex
	observers map[int]Observer
	order     []int
	nextID    int
}

// NewAppSignal creates an empty AppSignal.
func NewAppSignal() *AppSignal {
	return &AppSignal{observers: make(map[int]Observer)}
}

// Subscribe registers an observer and returns its unsubscribe function.
func (s *AppSignal) Subscribe(o Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	s.order = append(s.order, id)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
		for i, other := range s.order {
			if other == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// EnterForeground notifies all observers the application became visible.
func (s *AppSignal) EnterForeground() {
	for _, o := range s.snapshot() {
		o.EnteredForeground()
	}
}

// EnterBackground notifies all observers the application was hidden.
func (s *AppSignal) EnterBackground() {
	for _, o := range s.snapshot() {
		o.EnteredBackground()
	}
}

func (s *AppSignal) snapshot() []Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Observer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.observers[id])
	}
	return out
}
