package simhash

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestIndexCheckAndAdd tests near-duplicate detection against accepted fingerprints.
func TestIndexCheckAndAdd(t *testing.T) {
	t.Parallel()

	t.Run("first fingerprint is novel", func(t *testing.T) {
		t.Parallel()

		idx := NewIndex(3)
		m := idx.CheckAndAdd(0xF0F0)
		if m.Duplicate {
			t.Error("expected novel fingerprint")
		}
		if m.Distance != -1 {
			t.Errorf("expected distance -1 for empty index, got %d", m.Distance)
		}
		if idx.Len() != 1 {
			t.Errorf("expected 1 fingerprint, got %d", idx.Len())
		}
	})

	t.Run("same fingerprint twice is a duplicate", func(t *testing.T) {
		t.Parallel()

		idx := NewIndex(3)
		idx.CheckAndAdd(0xABCDEF)
		m := idx.CheckAndAdd(0xABCDEF)
		if !m.Duplicate || m.Distance != 0 {
			t.Errorf("expected duplicate at distance 0, got %+v", m)
		}
		if idx.Len() != 1 {
			t.Errorf("duplicate must not be appended, len=%d", idx.Len())
		}
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		t.Parallel()

		idx := NewIndex(3)
		idx.CheckAndAdd(0)
		if m := idx.CheckAndAdd(0b111); !m.Duplicate {
			t.Errorf("distance 3 should be a duplicate, got %+v", m)
		}
		if m := idx.CheckAndAdd(0b1111); m.Duplicate {
			t.Errorf("distance 4 should be novel, got %+v", m)
		}
		if idx.Len() != 2 {
			t.Errorf("expected 2 fingerprints, got %d", idx.Len())
		}
	})

	t.Run("reports nearest fingerprint", func(t *testing.T) {
		t.Parallel()

		idx := NewIndex(0)
		idx.CheckAndAdd(0)
		idx.CheckAndAdd(0xFF)
		m := idx.CheckAndAdd(0xFE)
		if m.Duplicate {
			t.Error("expected no duplicate with threshold 0")
		}
		if m.Nearest != 0xFF || m.Distance != 1 {
			t.Errorf("expected nearest 0xFF at 1, got %+v", m)
		}
		if idx.Len() != 3 {
			t.Errorf("expected 3 fingerprints, got %d", idx.Len())
		}
	})

	t.Run("negative threshold is clamped", func(t *testing.T) {
		t.Parallel()

		if NewIndex(-5).Threshold() != 0 {
			t.Error("expected threshold 0")
		}
	})
}

// TestIndexConcurrentClaims verifies that exactly one of many concurrent
// callers claims an identical novel fingerprint.
func TestIndexConcurrentClaims(t *testing.T) {
	t.Parallel()

	idx := NewIndex(DefaultThreshold)
	var novel atomic.Int32
	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !idx.CheckAndAdd(0x1234_5678_9ABC_DEF0).Duplicate {
				novel.Add(1)
			}
		}()
	}
	wg.Wait()

	if novel.Load() != 1 {
		t.Errorf("expected exactly one novel claim, got %d", novel.Load())
	}
	if idx.Len() != 1 {
		t.Errorf("expected 1 fingerprint, got %d", idx.Len())
	}
}
