package board

import (
	"github.com/gravitas-games/domino/internal/card"
	"github.com/gravitas-games/domino/internal/hex"
)

// EventType represents the type of board event.
type EventType int

const (
	// EventPlaced is emitted when a card is attached to a cell.
	EventPlaced EventType = iota
	// EventMoved is emitted when an occupant is re-inserted at another cell.
	EventMoved
	// EventRemoved is emitted when an occupant is detached.
	EventRemoved
	// EventUpdated is emitted after a content edit.
	EventUpdated
	// EventSelected is emitted when the selection changes (Card is nil on deselect).
	EventSelected
	// EventFocused is emitted when the focused cell changes.
	EventFocused
	// EventCleared is emitted when every occupant was dropped at once.
	EventCleared
	// EventLocked is emitted when the lock state changes.
	EventLocked
)

// String returns a human-readable representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventPlaced:
		return "placed"
	case EventMoved:
		return "moved"
	case EventRemoved:
		return "removed"
	case EventUpdated:
		return "updated"
	case EventSelected:
		return "selected"
	case EventFocused:
		return "focused"
	case EventCleared:
		return "cleared"
	case EventLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Event tells the renderer what changed and where to draw it.
type Event struct {
	Type     EventType  `json:"type"`
	Cell     hex.Axial  `json:"cell"`
	From     *hex.Axial `json:"from,omitempty"`
	Position hex.Point  `json:"position"`
	Card     *card.Card `json:"card,omitempty"`
	Locked   bool       `json:"locked,omitempty"`
}

// Observer receives board events synchronously, in mutation order.
type Observer interface {
	OnBoardEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnBoardEvent calls f(e).
func (f ObserverFunc) OnBoardEvent(e Event) { f(e) }

// NullObserver discards events.
type NullObserver struct{}

// OnBoardEvent does nothing.
func (NullObserver) OnBoardEvent(Event) {}
