package board

import (
	"errors"
	"fmt"

	"github.com/gravitas-games/domino/internal/hex"
)

var (
	// ErrOccupiedCell is returned when placing into a cell that already has an occupant.
	ErrOccupiedCell = errors.New("occupied cell")
	// ErrDuplicateCell is returned when a document places two cards on one cell.
	ErrDuplicateCell = errors.New("duplicate cell")
	// ErrAbsentCell is returned when an operation needs an occupant and the cell is empty.
	ErrAbsentCell = errors.New("absent cell")
	// ErrLocked is returned by editing operations while the board is locked.
	ErrLocked = errors.New("board is locked")
	// ErrEmptyContent is returned when dropped content would create a blank card.
	ErrEmptyContent = errors.New("empty content")
	// ErrNilCard is returned when placing a nil card.
	ErrNilCard = errors.New("nil card")
	// ErrInvalidDocument is returned for documents that reference unknown or repeated cards.
	ErrInvalidDocument = errors.New("invalid document")
)

// CellError records the operation and cell that failed.
type CellError struct {
	Op   string
	Cell hex.Axial
	Err  error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("board: %s %s: %v", e.Op, e.Cell, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

func cellErr(op string, cell hex.Axial, err error) error {
	return &CellError{Op: op, Cell: cell, Err: err}
}
