// Package board ties the hex layout and the cell store together. A Board is
// the single writer of placement state: it decides where each card sits and
// tells an Observer where to draw it. Boards are owned by one UI session and
// are not safe for concurrent use.
package board

import (
	"github.com/gravitas-games/domino/internal/card"
	"github.com/gravitas-games/domino/internal/cellstore"
	"github.com/gravitas-games/domino/internal/hex"
)

// Mode selects reference or value semantics for copy drags.
type Mode int

const (
	// PlaceMove keeps one card object per placement; copy drags move.
	PlaceMove Mode = iota
	// PlaceCopy duplicates the card content on copy drags.
	PlaceCopy
)

// ParseMode maps a config string to a Mode. Unknown values select PlaceMove.
func ParseMode(s string) Mode {
	if s == "copy" {
		return PlaceCopy
	}
	return PlaceMove
}

func (m Mode) String() string {
	if m == PlaceCopy {
		return "copy"
	}
	return "move"
}

// View is the occupant of a cell: a card plus where the board put it.
// Only the board writes Cell and Position.
type View struct {
	Card     *card.Card
	Cell     hex.Axial
	Position hex.Point
}

// Board owns the occupancy store, the layout and the focus/selection state.
type Board struct {
	layout   hex.Layout
	cells    *cellstore.Store[*View]
	observer Observer
	mode     Mode
	styles   []string
	locked   bool

	focused  hex.Axial
	selected *View
}

// Option configures a Board.
type Option func(*Board)

// WithObserver sets the event receiver.
func WithObserver(o Observer) Option {
	return func(b *Board) {
		if o != nil {
			b.observer = o
		}
	}
}

// WithMode sets the placement mode.
func WithMode(m Mode) Option {
	return func(b *Board) { b.mode = m }
}

// WithStyles sets the style list; the first entry styles cards created from drops.
func WithStyles(styles ...string) Option {
	return func(b *Board) {
		if len(styles) > 0 {
			b.styles = append([]string(nil), styles...)
		}
	}
}

// WithLocked starts the board locked.
func WithLocked(locked bool) Option {
	return func(b *Board) { b.locked = locked }
}

// New creates an empty board.
func New(layout hex.Layout, opts ...Option) *Board {
	b := &Board{
		layout:   layout,
		cells:    cellstore.New[*View](),
		observer: NullObserver{},
		styles:   card.DefaultStyles,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Layout returns the board geometry.
func (b *Board) Layout() hex.Layout { return b.layout }

// Mode returns the placement mode.
func (b *Board) Mode() Mode { return b.mode }

// Styles returns the configured style names.
func (b *Board) Styles() []string { return append([]string(nil), b.styles...) }

// DefaultStyle is the style given to cards created from drops.
func (b *Board) DefaultStyle() string { return b.styles[0] }

// Len returns the number of occupied cells.
func (b *Board) Len() int { return b.cells.Len() }

// Get returns the occupant at cell.
func (b *Board) Get(cell hex.Axial) (*View, bool) { return b.cells.Get(cell) }

// Has reports whether cell is occupied.
func (b *Board) Has(cell hex.Axial) bool { return b.cells.Has(cell) }

// Views returns every occupant ordered by cell.
func (b *Board) Views() []*View {
	entries := b.cells.Entries()
	out := make([]*View, len(entries))
	for i, e := range entries {
		out[i] = e.Occupant
	}
	return out
}

// Locked reports whether editing is disabled.
func (b *Board) Locked() bool { return b.locked }

// SetLocked enables or disables editing.
func (b *Board) SetLocked(locked bool) {
	if b.locked == locked {
		return
	}
	b.locked = locked
	b.emit(Event{Type: EventLocked, Cell: b.focused, Position: b.layout.CellToPixel(b.focused), Locked: locked})
}

// Place puts c on an empty cell.
func (b *Board) Place(c *card.Card, cell hex.Axial) (*View, error) {
	if b.locked {
		return nil, cellErr("place", cell, ErrLocked)
	}
	return b.place(c, cell)
}

func (b *Board) place(c *card.Card, cell hex.Axial) (*View, error) {
	if c == nil {
		return nil, cellErr("place", cell, ErrNilCard)
	}
	if b.cells.Has(cell) {
		return nil, cellErr("place", cell, ErrOccupiedCell)
	}
	v := &View{Card: c}
	b.attach(v, cell)
	b.emit(Event{Type: EventPlaced, Cell: cell, Position: v.Position, Card: c})
	return v, nil
}

// attach records v at cell and computes its pixel position.
func (b *Board) attach(v *View, cell hex.Axial) {
	v.Cell = cell
	v.Position = b.layout.CellToPixel(cell)
	b.cells.Set(cell, v)
}

// Remove detaches the occupant at cell. Empty cells are a no-op. Removing
// the selected occupant clears the selection.
func (b *Board) Remove(cell hex.Axial) (bool, error) {
	if b.locked {
		return false, cellErr("remove", cell, ErrLocked)
	}
	v, ok := b.cells.Get(cell)
	if !ok {
		return false, nil
	}
	b.cells.Delete(cell)
	b.emit(Event{Type: EventRemoved, Cell: cell, Position: v.Position, Card: v.Card})
	if b.selected == v {
		b.Deselect()
	}
	return true, nil
}

// MoveOrSwap moves the occupant of src to dst, sending any occupant of dst
// back to src. Either side may be empty.
func (b *Board) MoveOrSwap(src, dst hex.Axial) error {
	if src == dst {
		return nil
	}
	if b.locked {
		return cellErr("move", src, ErrLocked)
	}

	srcView, srcOK := b.cells.Get(src)
	dstView, dstOK := b.cells.Get(dst)

	// Both slots are emptied before either occupant is re-inserted.
	b.cells.Delete(src)
	b.cells.Delete(dst)

	if srcOK {
		b.attach(srcView, dst)
		from := src
		b.emit(Event{Type: EventMoved, Cell: dst, From: &from, Position: srcView.Position, Card: srcView.Card})
	}
	if dstOK {
		b.attach(dstView, src)
		from := dst
		b.emit(Event{Type: EventMoved, Cell: src, From: &from, Position: dstView.Position, Card: dstView.Card})
	}
	return nil
}

// UpdateCardContent replaces the editable content of the card at cell.
func (b *Board) UpdateCardContent(cell hex.Axial, content card.Content) error {
	if b.locked {
		return cellErr("update", cell, ErrLocked)
	}
	v, ok := b.cells.Get(cell)
	if !ok {
		return cellErr("update", cell, ErrAbsentCell)
	}
	if content.Style == "" {
		content.Style = v.Card.Style
	}
	next := &card.Card{ID: v.Card.ID}
	next.Apply(content)
	if next.Equal(v.Card) {
		return nil
	}
	v.Card.Apply(content)
	b.emit(Event{Type: EventUpdated, Cell: cell, Position: v.Position, Card: v.Card})
	return nil
}

// Clear drops every occupant, clears the selection and focuses the origin.
func (b *Board) Clear() {
	b.Deselect()
	b.cells.Clear()
	b.emit(Event{Type: EventCleared})
	b.Focus(hex.Axial{})
}

func (b *Board) emit(e Event) {
	b.observer.OnBoardEvent(e)
}
