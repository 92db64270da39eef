package board

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gravitas-games/domino/internal/card"
	"github.com/gravitas-games/domino/internal/hex"
)

func occupancy(b *Board) map[hex.Axial]card.Content {
	out := make(map[hex.Axial]card.Content)
	for _, v := range b.Views() {
		out[v.Cell] = v.Card.Content()
	}
	return out
}

func sameOccupancy(a, b map[hex.Axial]card.Content) bool {
	if len(a) != len(b) {
		return false
	}
	for cell, ca := range a {
		cb, ok := b[cell]
		if !ok {
			return false
		}
		x, y := &card.Card{}, &card.Card{}
		x.Apply(ca)
		y.Apply(cb)
		if !x.Equal(y) {
			return false
		}
	}
	return true
}

func populated(t *testing.T) *Board {
	t.Helper()
	b := newTestBoard(t)
	b.Place(card.New(card.Content{Text: "A", Style: "note", Icons: []card.IconRow{{Icon: "↗", Command: "https://example.com"}}}), hex.Axial{Q: 0, R: 0})
	b.Place(card.New(card.Content{Text: "B", Style: "title"}), hex.Axial{Q: -3, R: 2})
	b.Place(card.New(card.Content{Text: "C", Style: "plain", Image: "data:image/jpeg;base64,AAAA"}), hex.Axial{Q: 4, R: -7})
	return b
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	src := populated(t)
	data, err := src.Export()
	if err != nil {
		t.Fatalf("export error: %v", err)
	}

	dst := newTestBoard(t)
	dst.Place(textCard("stale"), hex.Axial{Q: 9, R: 9})
	if err := dst.Import(data); err != nil {
		t.Fatalf("import error: %v", err)
	}
	if !sameOccupancy(occupancy(src), occupancy(dst)) {
		t.Fatalf("occupancy differs after round trip:\n%v\n%v", occupancy(src), occupancy(dst))
	}
	for _, v := range dst.Views() {
		if v.Position != dst.Layout().CellToPixel(v.Cell) {
			t.Fatalf("view at %v has position %v", v.Cell, v.Position)
		}
	}
}

func TestSerializeIsSnapshot(t *testing.T) {
	b := populated(t)
	doc := b.Serialize()
	if err := b.UpdateCardContent(hex.Axial{}, card.Content{Text: "edited"}); err != nil {
		t.Fatalf("update error: %v", err)
	}
	for _, c := range doc.Cards {
		if c.Text == "edited" {
			t.Fatalf("document aliases live cards")
		}
	}
	if len(doc.Cards) != 3 || len(doc.Placements) != 3 || doc.Version != DocumentVersion {
		t.Fatalf("unexpected document shape %+v", doc)
	}
}

func TestDeserializeDuplicateCellIsAllOrNothing(t *testing.T) {
	b := populated(t)
	before := occupancy(b)

	doc := Document{
		Placements: []Placement{
			{Cell: hex.Axial{Q: 1, R: 1}, Card: CardRef{Inline: &card.Card{Text: "x"}}},
			{Cell: hex.Axial{Q: 2, R: 2}, Card: CardRef{Inline: &card.Card{Text: "y"}}},
			{Cell: hex.Axial{Q: 1, R: 1}, Card: CardRef{Inline: &card.Card{Text: "z"}}},
		},
	}
	err := b.Deserialize(doc)
	if !errors.Is(err, ErrDuplicateCell) {
		t.Fatalf("expected ErrDuplicateCell, got %v", err)
	}
	if !sameOccupancy(before, occupancy(b)) {
		t.Fatalf("failed deserialize modified the board")
	}
}

func TestDeserializeRejectsBadReferences(t *testing.T) {
	b := newTestBoard(t)
	c := &card.Card{ID: "c1", Text: "one"}
	cases := []struct {
		name string
		doc  Document
	}{
		{"unknown", Document{Placements: []Placement{{Cell: hex.Axial{}, Card: CardRef{ID: "missing"}}}}},
		{"twice", Document{Cards: []*card.Card{c}, Placements: []Placement{
			{Cell: hex.Axial{Q: 0}, Card: CardRef{ID: "c1"}},
			{Cell: hex.Axial{Q: 1}, Card: CardRef{ID: "c1"}},
		}}},
		{"listed twice", Document{Cards: []*card.Card{c, c}}},
	}
	for _, tc := range cases {
		if err := b.Deserialize(tc.doc); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("%s: expected ErrInvalidDocument, got %v", tc.name, err)
		}
	}
}

func TestDeserializeWorksWhileLocked(t *testing.T) {
	src := populated(t)
	dst := newTestBoard(t, WithLocked(true))
	if err := dst.Deserialize(src.Serialize()); err != nil {
		t.Fatalf("import while locked failed: %v", err)
	}
	if dst.Len() != 3 {
		t.Fatalf("expected 3 cards, got %d", dst.Len())
	}
}

func TestCardRefWireForms(t *testing.T) {
	data := []byte(`{"version":1,"cards":[{"id":"k","text":"ref","type":"note"}],
		"placements":[{"cell":[1,2],"card":"k"},{"cell":[-1,0],"card":{"text":"inline","type":"plain"}}]}`)
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if doc.Placements[0].Card.ID != "k" || doc.Placements[1].Card.Inline == nil {
		t.Fatalf("unexpected refs %+v", doc.Placements)
	}
	b := newTestBoard(t)
	if err := b.Deserialize(doc); err != nil {
		t.Fatalf("deserialize error: %v", err)
	}
	if textAt(t, b, hex.Axial{Q: 1, R: 2}) != "ref" || textAt(t, b, hex.Axial{Q: -1, R: 0}) != "inline" {
		t.Fatalf("cards not placed from both reference forms")
	}
	v, _ := b.Get(hex.Axial{Q: -1, R: 0})
	if v.Card.ID == "" {
		t.Fatalf("inline card should receive an ID")
	}

	out, err := json.Marshal(Placement{Cell: hex.Axial{Q: 1, R: 2}, Card: CardRef{ID: "k"}})
	if err != nil || string(out) != `{"cell":[1,2],"card":"k"}` {
		t.Fatalf("unexpected placement encoding %s err=%v", out, err)
	}
}

func TestDecodeLegacyCardsWithCells(t *testing.T) {
	data := []byte(`{"cards":[
		{"text":"first","type":"note","cell":[0,0],"icons":[{"icon":"★","command":"#1,0"}]},
		{"text":"second","type":"plain","cell":[1,0]}
	]}`)
	b := newTestBoard(t)
	if err := b.Import(data); err != nil {
		t.Fatalf("legacy import failed: %v", err)
	}
	if b.Len() != 2 || textAt(t, b, hex.Axial{}) != "first" || textAt(t, b, hex.Axial{Q: 1}) != "second" {
		t.Fatalf("legacy cards not placed: %v", occupancy(b))
	}
	v, _ := b.Get(hex.Axial{})
	if v.Card.Style != "note" || len(v.Card.Icons) != 1 {
		t.Fatalf("legacy card fields lost: %+v", v.Card)
	}

	dup := []byte(`{"cards":[{"text":"a","cell":[0,0]},{"text":"b","cell":[0,0]}]}`)
	if err := b.Import(dup); !errors.Is(err, ErrDuplicateCell) {
		t.Fatalf("expected ErrDuplicateCell, got %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("failed import modified the board")
	}
	if err := b.Import([]byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDecodeMalformedIsInvalidDocument(t *testing.T) {
	if _, err := Decode([]byte(`{"placements":[`)); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestDecodeRejectsIncompletePlacements(t *testing.T) {
	cases := map[string]string{
		"null card":    `{"placements":[{"cell":[1,1],"card":null}]}`,
		"missing card": `{"placements":[{"cell":[1,1]}]}`,
		"missing cell": `{"placements":[{"card":{"text":"no cell"}}]}`,
		"null cell":    `{"placements":[{"cell":null,"card":{"text":"x"}}]}`,
	}
	for name, data := range cases {
		b := newTestBoard(t)
		b.Place(textCard("keep"), hex.Axial{Q: 4, R: 4})
		err := b.Import([]byte(data))
		if !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("%s: expected ErrInvalidDocument, got %v", name, err)
		}
		if b.Len() != 1 || textAt(t, b, hex.Axial{Q: 4, R: 4}) != "keep" {
			t.Fatalf("%s: rejected import changed the board", name)
		}
	}
}

func TestCardRefRejectsNull(t *testing.T) {
	var ref CardRef
	if err := ref.UnmarshalJSON([]byte(" null ")); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}
