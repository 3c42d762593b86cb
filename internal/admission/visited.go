package admission

import "sync"

// VisitedSet holds the canonical URLs already discovered during a run.
// It only grows; nothing is evicted until the run ends.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisitedSet returns an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// Add inserts u and reports whether it was new. Check and insert happen
// under one lock, so exactly one of several concurrent callers adding the
// same URL gets true.
func (s *VisitedSet) Add(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.urls[u]; ok {
		return false
	}
	s.urls[u] = struct{}{}
	return true
}

// Contains reports whether u has been added.
func (s *VisitedSet) Contains(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.urls[u]
	return ok
}

// Len returns the number of URLs in the set.
func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.urls)
}
