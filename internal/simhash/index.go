package simhash

import "sync"

// DefaultThreshold is the largest Hamming distance still treated as a
// near-duplicate.
const DefaultThreshold = 3

// Match is the outcome of checking a fingerprint against an Index.
type Match struct {
	// Duplicate reports whether a recorded fingerprint lies within the threshold.
	Duplicate bool

	// Nearest is the closest recorded fingerprint. Only meaningful when
	// Distance is not negative.
	Nearest Fingerprint

	// Distance is the Hamming distance to Nearest, or -1 for an empty index.
	Distance int
}

// Index is the append-only set of fingerprints of every page that passed
// the near-duplicate check, whether or not a later rule rejected it.
// It lives for one run and is never persisted.
type Index struct {
	mu        sync.Mutex
	threshold int
	seen      []Fingerprint
}

// NewIndex creates an empty Index. A negative threshold is treated as zero,
// meaning only identical fingerprints are duplicates.
func NewIndex(threshold int) *Index {
	if threshold < 0 {
		threshold = 0
	}
	return &Index{threshold: threshold}
}

// Threshold returns the near-duplicate distance threshold.
func (idx *Index) Threshold() int {
	return idx.threshold
}

// CheckAndAdd scans every recorded fingerprint and, if none lies within the
// threshold, appends fp. The scan and the append happen under one lock, so
// two concurrent callers can never both claim the same novel fingerprint.
func (idx *Index) CheckAndAdd(fp Fingerprint) Match {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	m := idx.nearestLocked(fp)
	if m.Duplicate {
		return m
	}
	idx.seen = append(idx.seen, fp)
	return m
}

func (idx *Index) nearestLocked(fp Fingerprint) Match {
	m := Match{Distance: -1}
	for _, existing := range idx.seen {
		d := Distance(existing, fp)
		if m.Distance < 0 || d < m.Distance {
			m.Nearest = existing
			m.Distance = d
		}
		if d <= idx.threshold {
			m.Duplicate = true
			return m
		}
	}
	return m
}

// Len returns the number of recorded fingerprints.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	return len(idx.seen)
}
