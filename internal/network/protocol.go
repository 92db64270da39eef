package network

import (
	"encoding/json"

	"github.com/gravitas-games/domino/internal/board"
	"github.com/gravitas-games/domino/internal/card"
	"github.com/gravitas-games/domino/internal/drop"
	"github.com/gravitas-games/domino/internal/hex"
)

// Message types - Client → Server
const (
	MsgTypePlace      = "place"
	MsgTypeRemove     = "remove"
	MsgTypeMove       = "move"
	MsgTypeDrop       = "drop"
	MsgTypeFocus      = "focus"
	MsgTypeFocusPixel = "focus_pixel"
	MsgTypeNavigate   = "navigate"
	MsgTypeSelect     = "select"
	MsgTypeUpdate     = "update"
	MsgTypeLock       = "lock"
	MsgTypeCommand    = "command"
	MsgTypeEdit       = "edit"
	MsgTypeVisible    = "visible"
	MsgTypeLoad       = "load"
	MsgTypeSave       = "save"
	MsgTypeImport     = "import"
	MsgTypeSnapshot   = "snapshot"
	MsgTypePing       = "ping"
)

// Message types - Server → Client
const (
	MsgTypeWelcome  = "welcome"
	MsgTypeEvent    = "event"
	MsgTypeDocument = "document"
	MsgTypeViews    = "views"
	MsgTypeResult   = "result"
	MsgTypeError    = "error"
	MsgTypePong     = "pong"
)

// Error codes sent in ErrorPayload
const (
	ErrCodeInvalidMessage  = "invalid_message"
	ErrCodeUnknownType     = "unknown_message_type"
	ErrCodeOccupiedCell    = "occupied_cell"
	ErrCodeDuplicateCell   = "duplicate_cell"
	ErrCodeAbsentCell      = "absent_cell"
	ErrCodeLocked          = "locked"
	ErrCodeEmptyContent    = "empty_content"
	ErrCodeInvalidDocument = "invalid_document"
	ErrCodeForbidden       = "forbidden"
	ErrCodeNotFound        = "not_found"
	ErrCodeInternal        = "internal_error"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// PlacePayload creates a card on an empty cell. With Nearest set an
// occupied cell is replaced by the closest free one.
type PlacePayload struct {
	Cell    hex.Axial    `json:"cell"`
	Content card.Content `json:"content"`
	Nearest bool         `json:"nearest,omitempty"`
}

// CellPayload names a single cell (remove, focus, select)
type CellPayload struct {
	Cell *hex.Axial `json:"cell,omitempty"`
	// Hash is accepted by focus as an alternative to Cell ("#q,r")
	Hash string `json:"hash,omitempty"`
	// Centre is the viewport centre; focus replies with the pan offset
	Centre *hex.Point `json:"centre,omitempty"`
}

// MovePayload moves or swaps two cells
type MovePayload struct {
	From hex.Axial `json:"from"`
	To   hex.Axial `json:"to"`
}

// DropPayload is a raw drop; the cell is given directly or as a board-local pixel
type DropPayload struct {
	Cell  *hex.Axial   `json:"cell,omitempty"`
	Pixel *hex.Point   `json:"pixel,omitempty"`
	Drop  drop.Payload `json:"drop"`
}

// PixelPayload is a board-local pixel position
type PixelPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NavigatePayload carries a keyboard direction ("left", "ArrowUp", ...)
type NavigatePayload struct {
	Direction string     `json:"direction"`
	Centre    *hex.Point `json:"centre,omitempty"`
}

// UpdatePayload replaces the content of the card at Cell
type UpdatePayload struct {
	Cell    hex.Axial    `json:"cell"`
	Content card.Content `json:"content"`
}

// LockPayload locks or unlocks editing
type LockPayload struct {
	Locked bool `json:"locked"`
}

// CommandPayload is an icon the user clicked: either the command text, or
// the card cell and icon row to read it from
type CommandPayload struct {
	Command string     `json:"command,omitempty"`
	Cell    *hex.Axial `json:"cell,omitempty"`
	Row     int        `json:"row,omitempty"`
}

// VisiblePayload asks for the cards within Radius of Center (default: the
// focused cell). Without a radius every card is returned.
type VisiblePayload struct {
	Center *hex.Axial `json:"center,omitempty"`
	Radius *int       `json:"radius,omitempty"`
}

// BoardIDPayload names a stored board (load, save)
type BoardIDPayload struct {
	BoardID string `json:"board_id"`
}

// ImportPayload carries a full document
type ImportPayload struct {
	Document json.RawMessage `json:"document"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	EditorID  string        `json:"editor_id"`
	Username  string        `json:"username"`
	SessionID string        `json:"session_id"`
	Layout    LayoutPayload `json:"layout"`
	Mode      string        `json:"mode"`
	Locked    bool          `json:"locked"`
	CanEdit   bool          `json:"can_edit"`
	Styles    []string      `json:"styles"`
	Focused   hex.Axial     `json:"focused"`
}

// LayoutPayload describes the grid geometry
type LayoutPayload struct {
	Cell    hex.Size `json:"cell"`
	Spacing hex.Size `json:"spacing"`
}

// EventPayload forwards a board event
type EventPayload struct {
	board.Event
	Name string `json:"name"`
	HTML string `json:"html,omitempty"` // rendered card text
}

// DocumentPayload carries a serialized board
type DocumentPayload struct {
	BoardID  string         `json:"board_id,omitempty"`
	Document board.Document `json:"document"`
}

// ResultPayload acknowledges a request
type ResultPayload struct {
	Request  string        `json:"request"`
	OK       bool          `json:"ok"`
	Cell     *hex.Axial    `json:"cell,omitempty"`
	Position *hex.Point    `json:"position,omitempty"`
	Offset   *hex.Point    `json:"offset,omitempty"` // pan offset for the viewport centre
	Command  *card.Command `json:"command,omitempty"`
	Card     *card.Card    `json:"card,omitempty"`
	HTML     string        `json:"html,omitempty"`
}

// ViewsPayload answers a visible query
type ViewsPayload struct {
	Views []ViewPayload `json:"views"`
}

// ViewPayload is one placed card
type ViewPayload struct {
	Cell     hex.Axial  `json:"cell"`
	Position hex.Point  `json:"position"`
	Card     *card.Card `json:"card"`
	HTML     string     `json:"html"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
