package sequence

import (
	"sync"
	"testing"
)

func TestSequencerMonotonic(t *testing.T) {
	s := New(0)
	for i := uint64(1); i <= 100; i++ {
		if got := s.Next(); got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}
	if s.Current() != 100 {
		t.Errorf("expected current 100, got %d", s.Current())
	}
}

func TestSequencerResume(t *testing.T) {
	s := New(5)
	s.Resume(42)
	if got := s.Next(); got != 43 {
		t.Errorf("expected 43 after resume, got %d", got)
	}

	s.Resume(10)
	if s.Current() != 43 {
		t.Errorf("resume moved sequencer backwards to %d", s.Current())
	}
}

func TestSequencerConcurrentUnique(t *testing.T) {
	s := New(0)
	const workers, per = 8, 500

	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool, workers*per)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				v := s.Next()
				mu.Lock()
				if seen[v] {
					t.Errorf("duplicate sequence %d", v)
				}
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*per {
		t.Errorf("expected %d sequences, got %d", workers*per, len(seen))
	}
}
