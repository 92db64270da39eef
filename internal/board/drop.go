package board

import (
	"github.com/gravitas-games/domino/internal/card"
	"github.com/gravitas-games/domino/internal/drop"
	"github.com/gravitas-games/domino/internal/hex"
)

// ApplyDrop executes a resolved drop at cell. Content dropped on an occupied
// cell is ignored; the new card is selected so the editor can open it.
func (b *Board) ApplyDrop(intent drop.Intent, cell hex.Axial) error {
	if b.locked {
		return cellErr("drop", cell, ErrLocked)
	}
	switch in := intent.(type) {
	case drop.Move:
		return b.MoveOrSwap(in.Origin, cell)
	case drop.Delete:
		_, err := b.Remove(in.Origin)
		return err
	case drop.Copy:
		if b.mode != PlaceCopy {
			return b.MoveOrSwap(in.Origin, cell)
		}
		return b.copyTo(in.Origin, cell)
	case drop.CopyNew, drop.ExternalContent:
		if b.cells.Has(cell) {
			return nil
		}
		text, _ := drop.Content(in)
		if text == "" {
			return cellErr("drop", cell, ErrEmptyContent)
		}
		if _, err := b.place(card.New(card.Content{Text: text, Style: b.DefaultStyle()}), cell); err != nil {
			return err
		}
		b.Select(cell)
		return nil
	default:
		return nil
	}
}

func (b *Board) copyTo(origin, cell hex.Axial) error {
	if origin == cell {
		return nil
	}
	src, ok := b.cells.Get(origin)
	if !ok {
		return nil
	}
	_, err := b.place(src.Card.Clone(), cell)
	return err
}
