// Package drop turns raw drag-and-drop payloads captured by the browser into
// a resolved Intent. The board only ever sees an Intent.
package drop

import (
	"encoding/json"
	"strings"

	"github.com/gravitas-games/domino/internal/hex"
)

// Data transfer types set by the board UI.
const (
	TypeMove       = "card/move"
	TypeNew        = "card/new"
	TypeOriginCell = "card-origin-cell"
	TypeHTML       = "text/html"
	TypeURIList    = "text/uri-list"
	TypePlain      = "text/plain"
	TypeText       = "text"
)

// NewCardText is the content of a card dragged out of the "new card" icon.
const NewCardText = "new card"

// Target is where the payload was released.
type Target int

const (
	// TargetBoard is any cell of the board.
	TargetBoard Target = iota
	// TargetDelete is the delete icon.
	TargetDelete
)

// Payload is a drop as captured by the UI.
type Payload struct {
	Types  []string          `json:"types"`
	Data   map[string]string `json:"data"`
	Target Target            `json:"target"`
	// Copy is set when the copy modifier was held during a card drag.
	Copy bool `json:"copy,omitempty"`
}

func (p Payload) has(t string) bool {
	for _, have := range p.Types {
		if have == t {
			return true
		}
	}
	return false
}

// Intent is a resolved drop. The concrete types are Move, Copy, Delete,
// CopyNew, ExternalContent and None.
type Intent interface {
	intent()
}

// Move relocates the card at Origin onto the drop cell (swapping if occupied).
type Move struct{ Origin hex.Axial }

// Copy duplicates the card at Origin onto the drop cell.
type Copy struct{ Origin hex.Axial }

// Delete removes the card at Origin.
type Delete struct{ Origin hex.Axial }

// CopyNew creates a fresh card from the "new card" icon.
type CopyNew struct{}

// ExternalContent creates a card from content dragged in from outside.
type ExternalContent struct {
	Kind    string
	Content string
}

// None means the drop should be ignored.
type None struct{}

func (Move) intent()            {}
func (Copy) intent()            {}
func (Delete) intent()          {}
func (CopyNew) intent()         {}
func (ExternalContent) intent() {}
func (None) intent()            {}

type transformer struct {
	kind      string
	transform func(string) string
}

// Checked in order; the first type present wins.
var transformers = []transformer{
	{TypeHTML, func(c string) string { return c }},
	{TypeURIList, uriListToLinks},
	{TypePlain, func(c string) string { return c }},
	{TypeText, func(c string) string { return c }},
}

// Resolve maps a payload to an Intent.
func Resolve(p Payload) Intent {
	if p.has(TypeMove) {
		var origin hex.Axial
		if err := json.Unmarshal([]byte(p.Data[TypeOriginCell]), &origin); err != nil {
			return None{}
		}
		switch {
		case p.Target == TargetDelete:
			return Delete{Origin: origin}
		case p.Copy:
			return Copy{Origin: origin}
		default:
			return Move{Origin: origin}
		}
	}
	if p.Target == TargetDelete {
		return None{}
	}
	if p.has(TypeNew) {
		return CopyNew{}
	}
	for _, t := range transformers {
		if !p.has(t.kind) {
			continue
		}
		content := t.transform(p.Data[t.kind])
		if content == "" {
			return None{}
		}
		return ExternalContent{Kind: t.kind, Content: content}
	}
	return None{}
}

// Content returns the text a new card should start with, if the intent
// creates one.
func Content(i Intent) (string, bool) {
	switch v := i.(type) {
	case CopyNew:
		return NewCardText, true
	case ExternalContent:
		return v.Content, true
	default:
		return "", false
	}
}

func uriListToLinks(list string) string {
	var links []string
	for _, line := range strings.Split(list, "\n") {
		uri := strings.TrimSpace(line)
		if uri == "" || strings.HasPrefix(uri, "#") {
			continue
		}
		links = append(links, `<a href="`+uri+`">link</a>`)
	}
	return strings.Join(links, "<br>")
}
