package filters

import (
	"sync"

	"jobwatch/internal/dispatch"
)

// Store owns the current State. Patch swaps the whole value under the lock,
// so concurrent patches to different fields cannot lose each other.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers []func(State)
	events      *dispatch.Queue[State]
}

func NewStore(initial State) *Store {
	s := &Store{state: initial.Normalize()}
	s.events = dispatch.New(s.publish)
	return s
}

func (s *Store) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Patch merges p into the current state and notifies subscribers.
// Subscribers see states in patch order and run without the store locked,
// so they may read or patch the store. When another goroutine is already
// delivering, Patch returns before its own state has been delivered.
func (s *Store) Patch(p Patch) State {
	defer s.events.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.Apply(p)
	s.events.Enqueue(s.state)
	return s.state
}

// Subscribe registers fn for every future patch.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) publish(st State) {
	s.mu.Lock()
	subs := make([]func(State), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}
