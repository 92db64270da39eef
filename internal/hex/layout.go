package hex

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLayout is returned by NewLayout for non-positive cell sizes or
// negative spacing.
var ErrInvalidLayout = errors.New("hex: invalid layout")

// Size is a width/height pair in pixels.
type Size struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Point is a pixel position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout maps cells to pixels. Columns advance by one effective width per q
// and each column is shifted down by half an effective height, so r runs
// straight down a column.
type Layout struct {
	CellSize Size
	Spacing  Size
}

// NewLayout validates the measured card size and the gap between cards.
func NewLayout(cell, spacing Size) (Layout, error) {
	if cell.W <= 0 || cell.H <= 0 {
		return Layout{}, fmt.Errorf("%w: cell size %gx%g", ErrInvalidLayout, cell.W, cell.H)
	}
	if spacing.W < 0 || spacing.H < 0 {
		return Layout{}, fmt.Errorf("%w: spacing %gx%g", ErrInvalidLayout, spacing.W, spacing.H)
	}
	return Layout{CellSize: cell, Spacing: spacing}, nil
}

// Effective returns the cell pitch: cell size plus spacing.
func (l Layout) Effective() Size {
	return Size{W: l.CellSize.W + l.Spacing.W, H: l.CellSize.H + l.Spacing.H}
}

// CellToPixel returns the pixel centre of cell a.
func (l Layout) CellToPixel(a Axial) Point {
	eff := l.Effective()
	q, r := float64(a.Q), float64(a.R)
	return Point{
		X: q * eff.W,
		Y: q*eff.H*0.5 + r*eff.H,
	}
}

// PixelToCell returns the cell containing pixel p.
func (l Layout) PixelToCell(p Point) Axial {
	eff := l.Effective()
	fq := p.X / eff.W
	fr := (p.Y - fq*eff.H*0.5) / eff.H
	return FracCube{X: fq, Y: fr, Z: -fq - fr}.Round().ToAxial()
}

// FracCube is a cube coordinate with fractional components.
type FracCube struct {
	X, Y, Z float64
}

// Round snaps f to the nearest cube cell. The component with the largest
// rounding error is recomputed from the other two. x only wins when it is
// strictly larger than both y and z; otherwise y wins over z only when
// strictly larger, and z takes every remaining tie.
func (f FracCube) Round() Cube {
	rx, ry, rz := roundHalfUp(f.X), roundHalfUp(f.Y), roundHalfUp(f.Z)
	dx, dy, dz := abs(rx-f.X), abs(ry-f.Y), abs(rz-f.Z)

	switch {
	case dx > dy && dx > dz:
		rx = -ry - rz
	case dy > dz:
		ry = -rx - rz
	default:
		rz = -rx - ry
	}
	return Cube{X: int(rx), Y: int(ry), Z: int(rz)}
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
