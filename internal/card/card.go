// Package card defines the content payload placed on the board. A card has
// no coordinate of its own; where it sits is owned by the board.
package card

import (
	"github.com/google/uuid"
)

// MaxIconRows is the number of icon rows a card keeps.
const MaxIconRows = 4

// DefaultStyles is used when no style list is configured. The first entry
// is the style given to cards created from drops.
var DefaultStyles = []string{"plain", "note", "title", "dark", "image"}

// IconRow is a clickable icon with an optional command.
type IconRow struct {
	Icon    string `json:"icon"`
	Command string `json:"command"`
}

// Blank reports whether the row shows no icon.
func (r IconRow) Blank() bool { return r.Icon == "" }

// Cosmetic reports whether clicking the row does nothing.
func (r IconRow) Cosmetic() bool { return r.Command == "" }

// Card is an opaque content payload.
type Card struct {
	ID    string    `json:"id"`
	Text  string    `json:"text"`
	Style string    `json:"type"`
	Icons []IconRow `json:"icons,omitempty"`
	Image string    `json:"image,omitempty"`
}

// Content is the editable part of a card.
type Content struct {
	Text  string    `json:"text"`
	Style string    `json:"type"`
	Icons []IconRow `json:"icons,omitempty"`
	Image string    `json:"image,omitempty"`
}

// New creates a card with a fresh ID.
func New(c Content) *Card {
	card := &Card{ID: uuid.NewString()}
	card.Apply(c)
	return card
}

// Content returns a copy of the editable fields.
func (c *Card) Content() Content {
	return Content{
		Text:  c.Text,
		Style: c.Style,
		Icons: cloneIcons(c.Icons),
		Image: c.Image,
	}
}

// Apply replaces the editable fields. Icon rows past MaxIconRows are dropped.
func (c *Card) Apply(content Content) {
	c.Text = content.Text
	c.Style = content.Style
	c.Icons = cloneIcons(content.Icons)
	if len(c.Icons) > MaxIconRows {
		c.Icons = c.Icons[:MaxIconRows]
	}
	c.Image = content.Image
}

// Clone returns a deep copy with a new ID.
func (c *Card) Clone() *Card {
	return New(c.Content())
}

// Copy returns a deep copy that keeps the ID.
func (c *Card) Copy() *Card {
	cp := *c
	cp.Icons = cloneIcons(c.Icons)
	return &cp
}

// IconCommand returns the command behind icon row i. Blank and cosmetic
// rows have none.
func (c *Card) IconCommand(i int) (Command, bool) {
	if i < 0 || i >= len(c.Icons) {
		return Command{}, false
	}
	row := c.Icons[i]
	if row.Blank() || row.Cosmetic() {
		return Command{}, false
	}
	return ParseCommand(row.Command), true
}

// EnsureID assigns a fresh ID when the card has none (older documents).
func (c *Card) EnsureID() {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
}

// Equal reports whether two cards carry the same content, ignoring IDs.
func (c *Card) Equal(o *Card) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Text != o.Text || c.Style != o.Style || c.Image != o.Image || len(c.Icons) != len(o.Icons) {
		return false
	}
	for i := range c.Icons {
		if c.Icons[i] != o.Icons[i] {
			return false
		}
	}
	return true
}

func cloneIcons(in []IconRow) []IconRow {
	if len(in) == 0 {
		return nil
	}
	out := make([]IconRow, len(in))
	copy(out, in)
	return out
}
