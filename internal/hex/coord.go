package hex

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// ErrInvalidCoord is returned when a textual or JSON coordinate cannot be parsed.
var ErrInvalidCoord = errors.New("hex: invalid coordinate")

// Axial represents axial coordinates (q, r). Values compare by component,
// so Axial is used directly as a map key.
type Axial struct {
	Q int
	R int
}

// Cube represents cube coordinates (x, y, z) with x+y+z=0.
type Cube struct {
	X int
	Y int
	Z int
}

// Directions for axial neighbors.
var Directions = []Axial{
	{+1, 0}, {+1, -1}, {0, -1}, {-1, 0}, {-1, +1}, {0, +1},
}

// Add returns a+b in axial space.
func (a Axial) Add(b Axial) Axial { return Axial{a.Q + b.Q, a.R + b.R} }

// Mul scales an axial vector by k.
func (a Axial) Mul(k int) Axial { return Axial{a.Q * k, a.R * k} }

// Neighbor returns the adjacent cell in direction dir (0..5, wrapping).
func (a Axial) Neighbor(dir int) Axial {
	dir %= len(Directions)
	if dir < 0 {
		dir += len(Directions)
	}
	return a.Add(Directions[dir])
}

// ToCube converts axial to cube: x=q, y=r, z=-q-r.
func (a Axial) ToCube() Cube {
	return Cube{X: a.Q, Y: a.R, Z: -a.Q - a.R}
}

// ToAxial converts cube to axial by dropping z.
func (c Cube) ToAxial() Axial { return Axial{Q: c.X, R: c.Y} }

// Valid reports whether the cube satisfies x+y+z=0.
func (c Cube) Valid() bool { return c.X+c.Y+c.Z == 0 }

// String renders the coordinate as "q,r", the form used in location hashes.
func (a Axial) String() string {
	return strconv.Itoa(a.Q) + "," + strconv.Itoa(a.R)
}

// ParseAxial parses "q,r". An optional leading '#' is accepted.
func ParseAxial(s string) (Axial, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Axial{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
	}
	q, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Axial{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
	}
	r, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Axial{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
	}
	return Axial{Q: q, R: r}, nil
}

// MarshalJSON encodes the coordinate as the array [q, r].
func (a Axial) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{a.Q, a.R})
}

// UnmarshalJSON decodes the array form [q, r].
func (a *Axial) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCoord, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: expected 2 components, got %d", ErrInvalidCoord, len(pair))
	}
	a.Q, a.R = pair[0], pair[1]
	return nil
}

// DistanceAxial returns hex distance between two axial coords.
func DistanceAxial(a, b Axial) int {
	return DistanceCube(a.ToCube(), b.ToCube())
}

// DistanceCube returns hex distance between two cube coords.
func DistanceCube(a, b Cube) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	dz := abs(a.Z - b.Z)
	if dx > dy && dx > dz {
		return dx
	}
	if dy > dz {
		return dy
	}
	return dz
}

func abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
