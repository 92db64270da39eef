// Package cellstore provides a sparse map from hex cells to occupants.
// A Store holds at most one occupant per cell; it does not enforce that
// on Set, callers check Has first. Not safe for concurrent use.
package cellstore

import (
	"sort"

	"github.com/gravitas-games/domino/internal/hex"
)

// Entry is a single (cell, occupant) pair.
type Entry[V any] struct {
	Cell     hex.Axial
	Occupant V
}

// Store is a sparse, coordinate-keyed occupancy map.
type Store[V any] struct {
	cells map[hex.Axial]V
}

// New creates an empty store.
func New[V any]() *Store[V] {
	return &Store[V]{cells: make(map[hex.Axial]V)}
}

// Get returns the occupant at cell and whether one exists.
func (s *Store[V]) Get(cell hex.Axial) (V, bool) {
	v, ok := s.cells[cell]
	return v, ok
}

// Has reports whether cell is occupied.
func (s *Store[V]) Has(cell hex.Axial) bool {
	_, ok := s.cells[cell]
	return ok
}

// Set inserts or overwrites the occupant at cell.
func (s *Store[V]) Set(cell hex.Axial, v V) {
	s.cells[cell] = v
}

// Delete removes the occupant at cell. Absent cells are a no-op.
// It reports whether anything was removed.
func (s *Store[V]) Delete(cell hex.Axial) bool {
	if _, ok := s.cells[cell]; !ok {
		return false
	}
	delete(s.cells, cell)
	return true
}

// Len returns the number of occupied cells.
func (s *Store[V]) Len() int { return len(s.cells) }

// Clear removes every occupant.
func (s *Store[V]) Clear() {
	s.cells = make(map[hex.Axial]V)
}

// Each calls fn for every occupied cell in unspecified order until fn
// returns false. fn must not mutate the store.
func (s *Store[V]) Each(fn func(cell hex.Axial, v V) bool) {
	for cell, v := range s.cells {
		if !fn(cell, v) {
			return
		}
	}
}

// Entries returns a snapshot of all pairs ordered by (Q, R).
func (s *Store[V]) Entries() []Entry[V] {
	out := make([]Entry[V], 0, len(s.cells))
	for cell, v := range s.cells {
		out = append(out, Entry[V]{Cell: cell, Occupant: v})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].Cell, out[j].Cell) })
	return out
}

func less(a, b hex.Axial) bool {
	if a.Q != b.Q {
		return a.Q < b.Q
	}
	return a.R < b.R
}
