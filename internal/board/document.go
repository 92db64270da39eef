package board

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/gravitas-games/domino/internal/card"
	"github.com/gravitas-games/domino/internal/hex"
)

// DocumentVersion is written into every serialized document.
const DocumentVersion = 1

// Document is the serialized board: the cards and where each one sits.
type Document struct {
	Version    int          `json:"version"`
	Cards      []*card.Card `json:"cards"`
	Placements []Placement  `json:"placements"`
}

// Placement puts one card on one cell.
type Placement struct {
	Cell hex.Axial `json:"cell"`
	Card CardRef   `json:"card"`
}

// CardRef is either the ID of an entry in Document.Cards or an inline card.
// On the wire a reference is a JSON string and an inline card an object.
type CardRef struct {
	ID     string
	Inline *card.Card
}

// MarshalJSON implements json.Marshaler.
func (r CardRef) MarshalJSON() ([]byte, error) {
	if r.Inline != nil {
		return json.Marshal(r.Inline)
	}
	return json.Marshal(r.ID)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *CardRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("%w: null card reference", ErrInvalidDocument)
	}
	if len(b) > 0 && b[0] == '"' {
		r.Inline = nil
		return json.Unmarshal(b, &r.ID)
	}
	var c card.Card
	if err := json.Unmarshal(b, &c); err != nil {
		return fmt.Errorf("card reference: %w", err)
	}
	r.ID = ""
	r.Inline = &c
	return nil
}

// Serialize snapshots the board. Cards are copied, so later edits do not
// leak into the document.
func (b *Board) Serialize() Document {
	entries := b.cells.Entries()
	doc := Document{
		Version:    DocumentVersion,
		Cards:      make([]*card.Card, 0, len(entries)),
		Placements: make([]Placement, 0, len(entries)),
	}
	for _, e := range entries {
		c := e.Occupant.Card.Copy()
		doc.Cards = append(doc.Cards, c)
		doc.Placements = append(doc.Placements, Placement{Cell: e.Cell, Card: CardRef{ID: c.ID}})
	}
	return doc
}

type resolvedPlacement struct {
	cell hex.Axial
	card *card.Card
}

// Deserialize replaces the board contents with doc, placing entries in
// order. The document is validated first, so a failing document leaves the
// board untouched. Import works while the board is locked.
func (b *Board) Deserialize(doc Document) error {
	placements, err := resolveDocument(doc)
	if err != nil {
		return err
	}
	b.Clear()
	for _, p := range placements {
		if _, err := b.place(p.card, p.cell); err != nil {
			return err
		}
	}
	return nil
}

func resolveDocument(doc Document) ([]resolvedPlacement, error) {
	byID := make(map[string]*card.Card, len(doc.Cards))
	for _, c := range doc.Cards {
		if c == nil || c.ID == "" {
			continue
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("board: %w: card %q listed twice", ErrInvalidDocument, c.ID)
		}
		byID[c.ID] = c
	}

	cells := mapset.New[hex.Axial]()
	used := mapset.New[string]()
	out := make([]resolvedPlacement, 0, len(doc.Placements))
	for _, p := range doc.Placements {
		if cells.Has(p.Cell) {
			return nil, cellErr("deserialize", p.Cell, ErrDuplicateCell)
		}
		cells.Put(p.Cell)

		var c *card.Card
		if p.Card.Inline != nil {
			c = p.Card.Inline.Copy()
			c.EnsureID()
		} else {
			src, ok := byID[p.Card.ID]
			if !ok {
				return nil, fmt.Errorf("board: %w: unknown card %q at %s", ErrInvalidDocument, p.Card.ID, p.Cell)
			}
			c = src.Copy()
		}
		if used.Has(c.ID) {
			return nil, fmt.Errorf("board: %w: card %q placed twice", ErrInvalidDocument, c.ID)
		}
		used.Put(c.ID)
		out = append(out, resolvedPlacement{cell: p.Cell, card: c})
	}
	return out, nil
}

// Encode writes doc as JSON.
func Encode(doc Document) ([]byte, error) {
	return json.Marshal(doc)
}

// legacyCard is the older card shape that carried its own cell.
type legacyCard struct {
	card.Card
	Cell *hex.Axial `json:"cell,omitempty"`
}

// wirePlacement keeps Cell as a pointer so a missing cell is detected
// instead of read as the origin.
type wirePlacement struct {
	Cell *hex.Axial `json:"cell"`
	Card *CardRef   `json:"card"`
}

type wireDocument struct {
	Version    int             `json:"version"`
	Cards      []legacyCard    `json:"cards"`
	Placements []wirePlacement `json:"placements"`
}

// Decode reads a document. Documents without placements whose cards carry a
// "cell" field are converted into placements.
func Decode(data []byte) (Document, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return Document{}, fmt.Errorf("board: %w: %w", ErrInvalidDocument, err)
	}
	doc := Document{Version: w.Version}
	for i, p := range w.Placements {
		if p.Cell == nil {
			return Document{}, fmt.Errorf("board: %w: placement %d has no cell", ErrInvalidDocument, i)
		}
		if p.Card == nil {
			return Document{}, fmt.Errorf("board: %w: placement %d at %s has no card", ErrInvalidDocument, i, *p.Cell)
		}
		doc.Placements = append(doc.Placements, Placement{Cell: *p.Cell, Card: *p.Card})
	}
	if doc.Version == 0 {
		doc.Version = DocumentVersion
	}
	legacy := len(w.Placements) == 0
	for i := range w.Cards {
		c := w.Cards[i].Card
		if legacy && w.Cards[i].Cell != nil {
			doc.Placements = append(doc.Placements, Placement{Cell: *w.Cards[i].Cell, Card: CardRef{Inline: &c}})
			continue
		}
		doc.Cards = append(doc.Cards, &c)
	}
	return doc, nil
}

// Export serializes the board to JSON.
func (b *Board) Export() ([]byte, error) {
	return Encode(b.Serialize())
}

// Import decodes JSON and replaces the board contents.
func (b *Board) Import(data []byte) error {
	doc, err := Decode(data)
	if err != nil {
		return err
	}
	return b.Deserialize(doc)
}
