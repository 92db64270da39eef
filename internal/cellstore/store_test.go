package cellstore

import (
	"testing"

	"github.com/gravitas-games/domino/internal/hex"
)

func TestSetGetDelete(t *testing.T) {
	s := New[string]()
	a := hex.Axial{Q: 1, R: -1}
	if s.Has(a) {
		t.Fatalf("empty store should not have %v", a)
	}
	s.Set(a, "A")
	// a fresh value with equal components is the same key
	if v, ok := s.Get(hex.Axial{Q: 1, R: -1}); !ok || v != "A" {
		t.Fatalf("expected A, got %q ok=%v", v, ok)
	}
	s.Set(a, "B")
	if v, _ := s.Get(a); v != "B" || s.Len() != 1 {
		t.Fatalf("overwrite failed: %q len=%d", v, s.Len())
	}
	if !s.Delete(a) {
		t.Fatalf("expected delete to report removal")
	}
	if s.Delete(a) {
		t.Fatalf("second delete should be a no-op")
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestNegativeCoordinatesDoNotCollide(t *testing.T) {
	s := New[int]()
	// "1,-12" and "1-,12"-style collisions are impossible with struct keys
	s.Set(hex.Axial{Q: 1, R: -12}, 1)
	s.Set(hex.Axial{Q: -1, R: 12}, 2)
	s.Set(hex.Axial{Q: 11, R: -2}, 3)
	if s.Len() != 3 {
		t.Fatalf("expected 3 distinct keys, got %d", s.Len())
	}
}

func TestEntriesSorted(t *testing.T) {
	s := New[string]()
	s.Set(hex.Axial{Q: 2, R: 0}, "c")
	s.Set(hex.Axial{Q: -1, R: 5}, "a")
	s.Set(hex.Axial{Q: 2, R: -3}, "b")
	entries := s.Entries()
	want := []string{"a", "b", "c"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Occupant != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i], e.Occupant)
		}
	}
	if entries[0].Cell != (hex.Axial{Q: -1, R: 5}) || entries[2].Cell != (hex.Axial{Q: 2, R: 0}) {
		t.Fatalf("unexpected cell order %v", entries)
	}
}

func TestEachStopsEarly(t *testing.T) {
	s := New[int]()
	for i := 0; i < 10; i++ {
		s.Set(hex.Axial{Q: i}, i)
	}
	seen := 0
	s.Each(func(hex.Axial, int) bool {
		seen++
		return seen < 3
	})
	if seen != 3 {
		t.Fatalf("expected Each to stop after 3 calls, got %d", seen)
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("clear left %d entries", s.Len())
	}
}
