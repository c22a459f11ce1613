package poller

// dedupSet tracks which mailbox keys have already been processed. The store
// reuses a small tail window, so the set stays tiny in steady state; the full
// clear above maxSize bounds memory on a long-running process. Clearing can
// re-deliver a handful of tail entries once, which downstream state
// transitions absorb (a duplicate check-in scan just flips the session).
type dedupSet struct {
	seen    map[string]struct{}
	maxSize int
}

const defaultDedupBound = 1000

func newDedupSet(maxSize int) *dedupSet {
	if maxSize <= 0 {
		maxSize = defaultDedupBound
	}
	return &dedupSet{
		seen:    make(map[string]struct{}),
		maxSize: maxSize,
	}
}

// Seen reports whether the key has been marked
func (s *dedupSet) Seen(key string) bool {
	_, ok := s.seen[key]
	return ok
}

// Mark records the key, clearing the whole set first if it is full
func (s *dedupSet) Mark(key string) {
	if len(s.seen) >= s.maxSize {
		s.seen = make(map[string]struct{})
	}
	s.seen[key] = struct{}{}
}

// Len returns the number of tracked keys
func (s *dedupSet) Len() int {
	return len(s.seen)
}
