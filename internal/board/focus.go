package board

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gravitas-games/domino/internal/hex"
)

// Direction is a keyboard navigation step.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Columns zig-zag, so left and right also step r.
var directionOffsets = map[Direction]hex.Axial{
	Left:  {Q: -1, R: +1},
	Right: {Q: +1, R: -1},
	Up:    {Q: 0, R: -1},
	Down:  {Q: 0, R: +1},
}

// ParseDirection maps "left", "right", "up" and "down" (or the arrow key
// names) to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "left", "ArrowLeft":
		return Left, true
	case "right", "ArrowRight":
		return Right, true
	case "up", "ArrowUp":
		return Up, true
	case "down", "ArrowDown":
		return Down, true
	}
	return 0, false
}

// Focus makes cell the focused cell and returns its pixel centre, which the
// renderer uses to centre the camera. The store is not touched.
func (b *Board) Focus(cell hex.Axial) hex.Point {
	b.focused = cell
	p := b.layout.CellToPixel(cell)
	b.emit(Event{Type: EventFocused, Cell: cell, Position: p})
	return p
}

// FocusHash focuses the cell named by a location hash ("#q,r"). Each
// component is read as a leading integer, so "#3.7,2" is 3,2 and an
// unreadable component is 0. A hash without exactly two components
// focuses the origin.
func (b *Board) FocusHash(hash string) (hex.Axial, hex.Point) {
	cell := parseHash(hash)
	return cell, b.Focus(cell)
}

func parseHash(hash string) hex.Axial {
	parts := strings.Split(strings.TrimPrefix(hash, "#"), ",")
	if len(parts) != 2 {
		return hex.Axial{}
	}
	return hex.Axial{Q: leadingInt(parts[0]), R: leadingInt(parts[1])}
}

// leadingInt reads an optionally signed run of digits after leading
// whitespace and ignores the rest. No digits, or overflow, reads as 0.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// FocusAtPixel focuses the cell under p, in board-local pixels. Used while
// panning with the viewport centre.
func (b *Board) FocusAtPixel(p hex.Point) hex.Axial {
	cell := b.layout.PixelToCell(p)
	b.Focus(cell)
	return cell
}

// Focused returns the focused cell.
func (b *Board) Focused() hex.Axial { return b.focused }

// PanOffset returns the scene translation that puts cell at viewport centre.
func (b *Board) PanOffset(cell hex.Axial, centre hex.Point) hex.Point {
	p := b.layout.CellToPixel(cell)
	return hex.Point{X: centre.X - p.X, Y: centre.Y - p.Y}
}

// Navigate moves focus one step and returns the new focused cell.
func (b *Board) Navigate(d Direction) hex.Axial {
	off, ok := directionOffsets[d]
	if !ok {
		return b.focused
	}
	next := b.focused.Add(off)
	b.Focus(next)
	return next
}

// Select marks the occupant at cell as selected. Selecting an empty cell
// clears the selection.
func (b *Board) Select(cell hex.Axial) (*View, bool) {
	v, ok := b.cells.Get(cell)
	if !ok {
		b.Deselect()
		return nil, false
	}
	b.selected = v
	b.emit(Event{Type: EventSelected, Cell: cell, Position: v.Position, Card: v.Card})
	return v, true
}

// Deselect clears the selection.
func (b *Board) Deselect() {
	if b.selected == nil {
		return
	}
	b.selected = nil
	b.emit(Event{Type: EventSelected, Cell: b.focused})
}

// Selected returns the selected occupant, if any.
func (b *Board) Selected() (*View, bool) {
	return b.selected, b.selected != nil
}

// EditFocused returns the occupant of the focused cell for the editor.
func (b *Board) EditFocused() (*View, bool) {
	return b.cells.Get(b.focused)
}

// Visible returns the occupants within radius cells of center, ordered by cell.
func (b *Board) Visible(center hex.Axial, radius int) []*View {
	if radius < 0 {
		return nil
	}
	var out []*View
	if diskSize := 1 + 3*radius*(radius+1); b.cells.Len() < diskSize {
		b.cells.Each(func(cell hex.Axial, v *View) bool {
			if hex.DistanceAxial(center, cell) <= radius {
				out = append(out, v)
			}
			return true
		})
		sortViews(out)
		return out
	}
	for _, cell := range hex.Disk(center, radius) {
		if v, ok := b.cells.Get(cell); ok {
			out = append(out, v)
		}
	}
	sortViews(out)
	return out
}

// NearestEmpty returns the free cell closest to cell, searching rings out
// to maxRadius.
func (b *Board) NearestEmpty(cell hex.Axial, maxRadius int) (hex.Axial, bool) {
	for _, c := range hex.Spiral(cell, maxRadius) {
		if !b.cells.Has(c) {
			return c, true
		}
	}
	return hex.Axial{}, false
}

func sortViews(views []*View) {
	sort.Slice(views, func(i, j int) bool {
		a, b := views[i].Cell, views[j].Cell
		if a.Q != b.Q {
			return a.Q < b.Q
		}
		return a.R < b.R
	})
}
