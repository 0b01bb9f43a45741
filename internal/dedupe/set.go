package dedupe

import "sync"

// Set tracks entity ids already emitted by a single run.
// A Set is owned by the run that created it; the mutex only guards the
// indexer, which shares one Set between its fetch loop and shutdown path.
type Set struct {
	mu    sync.Mutex
	items map[string]struct{}
}

// NewSet creates an empty set sized for roughly capacity ids.
func NewSet(capacity int) *Set {
	if capacity < 0 {
		capacity = 0
	}
	return &Set{items: make(map[string]struct{}, capacity)}
}

// IsSeen returns true when the id has already been recorded.
// It does not record the id; use MarkSeen for that.
func (s *Set) IsSeen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[id]
	return ok
}

// MarkSeen records id.
func (s *Set) MarkSeen(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[id] = struct{}{}
}

// Add records id and reports whether it was new.
func (s *Set) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; ok {
		return false
	}
	s.items[id] = struct{}{}
	return true
}

// Len returns the number of recorded ids.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}
