package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gravitas-games/domino/internal/board"
	"github.com/gravitas-games/domino/internal/card"
	"github.com/gravitas-games/domino/internal/config"
	"github.com/gravitas-games/domino/internal/drop"
	"github.com/gravitas-games/domino/internal/hex"
	"github.com/gravitas-games/domino/internal/network"
	"github.com/gravitas-games/domino/internal/storage"
	"github.com/gravitas-games/domino/pkg/models"
)

// Session is one editor's board. Messages are handled one at a time from
// the connection's read loop, so the board never sees overlapping calls.
type Session struct {
	ID        string
	CreatedAt time.Time

	editor *models.Editor
	board  *board.Board
	store  storage.Store
	ctx    context.Context

	// muted suppresses per-card events while a whole document is loaded;
	// the client gets one document message instead
	muted bool

	send func(*network.ServerMessage)
}

// NewSession creates a board session and sends the welcome message
func NewSession(ctx context.Context, editor *models.Editor, cfg *config.Config, layout hex.Layout, store storage.Store, send func(*network.ServerMessage)) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		editor:    editor,
		store:     store,
		ctx:       ctx,
		send:      send,
	}
	editor.SessionID = s.ID
	editor.Connected = true
	editor.ConnectedAt = s.CreatedAt

	s.board = board.New(layout,
		board.WithObserver(board.ObserverFunc(s.forwardEvent)),
		board.WithMode(board.ParseMode(cfg.Board.PlacementMode)),
		board.WithStyles(cfg.Board.Styles...),
		board.WithLocked(cfg.Board.Locked || !editor.CanEdit()),
	)

	s.send(&network.ServerMessage{
		Type: network.MsgTypeWelcome,
		Payload: network.WelcomePayload{
			EditorID:  editor.ID,
			Username:  editor.Username,
			SessionID: s.ID,
			Layout:    network.LayoutPayload{Cell: layout.CellSize, Spacing: layout.Spacing},
			Mode:      s.board.Mode().String(),
			Locked:    s.board.Locked(),
			CanEdit:   editor.CanEdit(),
			Styles:    s.board.Styles(),
			Focused:   s.board.Focused(),
		},
	})

	if id := cfg.Board.DefaultBoard; id != "" {
		if err := s.load(id); err != nil {
			log.Printf("Session %s: failed to load default board %s: %v", s.ID, id, err)
		}
	}
	return s
}

// Board exposes the session's board
func (s *Session) Board() *board.Board { return s.board }

func (s *Session) forwardEvent(e board.Event) {
	if s.muted {
		return
	}
	payload := network.EventPayload{Event: e, Name: e.Type.String()}
	if e.Card != nil {
		payload.HTML = card.RenderText(e.Card.Text)
	}
	s.send(&network.ServerMessage{Type: network.MsgTypeEvent, Payload: payload})
}

// Handle routes a client message
func (s *Session) Handle(msg *network.ClientMessage) {
	s.editor.LastSeen = time.Now()

	var err error
	switch msg.Type {
	case network.MsgTypePlace:
		err = s.handlePlace(msg.Payload)
	case network.MsgTypeRemove:
		err = s.handleRemove(msg.Payload)
	case network.MsgTypeMove:
		err = s.handleMove(msg.Payload)
	case network.MsgTypeDrop:
		err = s.handleDrop(msg.Payload)
	case network.MsgTypeUpdate:
		err = s.handleUpdate(msg.Payload)
	case network.MsgTypeFocus:
		err = s.handleFocus(msg.Payload)
	case network.MsgTypeFocusPixel:
		err = s.handleFocusPixel(msg.Payload)
	case network.MsgTypeNavigate:
		err = s.handleNavigate(msg.Payload)
	case network.MsgTypeSelect:
		err = s.handleSelect(msg.Payload)
	case network.MsgTypeLock:
		err = s.handleLock(msg.Payload)
	case network.MsgTypeCommand:
		err = s.handleCommand(msg.Payload)
	case network.MsgTypeEdit:
		err = s.handleEdit()
	case network.MsgTypeVisible:
		err = s.handleVisible(msg.Payload)
	case network.MsgTypeLoad:
		err = s.handleLoad(msg.Payload)
	case network.MsgTypeSave:
		err = s.handleSave(msg.Payload)
	case network.MsgTypeImport:
		err = s.handleImport(msg.Payload)
	case network.MsgTypeSnapshot:
		s.sendDocument("")
	case network.MsgTypePing:
		s.send(&network.ServerMessage{
			Type:    network.MsgTypePong,
			Payload: map[string]interface{}{"timestamp": time.Now().Unix()},
		})
	default:
		log.Printf("Unknown message type: %s", msg.Type)
		s.sendError(network.ErrCodeUnknownType, "Unknown message type")
		return
	}

	if err != nil {
		s.sendError(errorCode(err), err.Error())
	}
}

// nearestSearchRadius bounds the free-cell search of a nearest placement
const nearestSearchRadius = 16

var errInvalidPayload = errors.New("invalid payload")
var errForbidden = errors.New("editor may not change this board")

func decode(raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidPayload
	}
	return nil
}

func (s *Session) requireEdit() error {
	if !s.editor.CanEdit() {
		return errForbidden
	}
	return nil
}

func (s *Session) ok(request string, cell *hex.Axial) {
	s.send(&network.ServerMessage{
		Type:    network.MsgTypeResult,
		Payload: network.ResultPayload{Request: request, OK: true, Cell: cell},
	})
}

func (s *Session) handlePlace(raw json.RawMessage) error {
	var p network.PlacePayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if err := s.requireEdit(); err != nil {
		return err
	}
	if p.Content.Style == "" {
		p.Content.Style = s.board.DefaultStyle()
	}
	cell := p.Cell
	if p.Nearest {
		free, ok := s.board.NearestEmpty(cell, nearestSearchRadius)
		if !ok {
			return fmt.Errorf("no free cell within %d of %s: %w", nearestSearchRadius, cell, board.ErrOccupiedCell)
		}
		cell = free
	}
	if _, err := s.board.Place(card.New(p.Content), cell); err != nil {
		return err
	}
	s.ok(network.MsgTypePlace, &cell)
	return nil
}

func (s *Session) handleRemove(raw json.RawMessage) error {
	var p network.CellPayload
	if err := decode(raw, &p); err != nil || p.Cell == nil {
		return errInvalidPayload
	}
	if err := s.requireEdit(); err != nil {
		return err
	}
	if _, err := s.board.Remove(*p.Cell); err != nil {
		return err
	}
	s.ok(network.MsgTypeRemove, p.Cell)
	return nil
}

func (s *Session) handleMove(raw json.RawMessage) error {
	var p network.MovePayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if err := s.requireEdit(); err != nil {
		return err
	}
	if err := s.board.MoveOrSwap(p.From, p.To); err != nil {
		return err
	}
	s.ok(network.MsgTypeMove, &p.To)
	return nil
}

func (s *Session) handleDrop(raw json.RawMessage) error {
	var p network.DropPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if err := s.requireEdit(); err != nil {
		return err
	}
	var cell hex.Axial
	switch {
	case p.Cell != nil:
		cell = *p.Cell
	case p.Pixel != nil:
		cell = s.board.Layout().PixelToCell(*p.Pixel)
	case p.Drop.Target != drop.TargetDelete:
		return errInvalidPayload
	}
	if err := s.board.ApplyDrop(drop.Resolve(p.Drop), cell); err != nil {
		return err
	}
	s.ok(network.MsgTypeDrop, &cell)
	return nil
}

func (s *Session) handleUpdate(raw json.RawMessage) error {
	var p network.UpdatePayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if err := s.requireEdit(); err != nil {
		return err
	}
	if err := s.board.UpdateCardContent(p.Cell, p.Content); err != nil {
		return err
	}
	s.ok(network.MsgTypeUpdate, &p.Cell)
	return nil
}

func (s *Session) handleFocus(raw json.RawMessage) error {
	var p network.CellPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	var cell hex.Axial
	if p.Cell != nil {
		cell = *p.Cell
		s.board.Focus(cell)
	} else {
		cell, _ = s.board.FocusHash(p.Hash)
	}
	s.focusResult(network.MsgTypeFocus, cell, p.Centre)
	return nil
}

// focusResult reports the focused cell, its pixel centre and, when the
// viewport centre is known, the pan offset that centres it
func (s *Session) focusResult(request string, cell hex.Axial, centre *hex.Point) {
	pos := s.board.Layout().CellToPixel(cell)
	res := network.ResultPayload{Request: request, OK: true, Cell: &cell, Position: &pos}
	if centre != nil {
		off := s.board.PanOffset(cell, *centre)
		res.Offset = &off
	}
	s.send(&network.ServerMessage{Type: network.MsgTypeResult, Payload: res})
}

func (s *Session) handleFocusPixel(raw json.RawMessage) error {
	var p network.PixelPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	cell := s.board.FocusAtPixel(hex.Point{X: p.X, Y: p.Y})
	s.ok(network.MsgTypeFocusPixel, &cell)
	return nil
}

func (s *Session) handleNavigate(raw json.RawMessage) error {
	var p network.NavigatePayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	dir, ok := board.ParseDirection(p.Direction)
	if !ok {
		return errInvalidPayload
	}
	s.focusResult(network.MsgTypeNavigate, s.board.Navigate(dir), p.Centre)
	return nil
}

func (s *Session) handleSelect(raw json.RawMessage) error {
	var p network.CellPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if p.Cell == nil {
		s.board.Deselect()
		s.ok(network.MsgTypeSelect, nil)
		return nil
	}
	if _, ok := s.board.Select(*p.Cell); ok {
		s.board.Focus(*p.Cell)
	}
	s.ok(network.MsgTypeSelect, p.Cell)
	return nil
}

func (s *Session) handleLock(raw json.RawMessage) error {
	var p network.LockPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if !p.Locked {
		if err := s.requireEdit(); err != nil {
			return err
		}
	}
	s.board.SetLocked(p.Locked)
	s.ok(network.MsgTypeLock, nil)
	return nil
}

func (s *Session) handleCommand(raw json.RawMessage) error {
	var p network.CommandPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	cmd := card.ParseCommand(p.Command)
	if p.Cell != nil {
		v, ok := s.board.Get(*p.Cell)
		if !ok {
			return fmt.Errorf("command at %s: %w", *p.Cell, board.ErrAbsentCell)
		}
		// Blank and cosmetic rows do nothing
		cmd, _ = v.Card.IconCommand(p.Row)
	}
	if cmd.Kind == card.CommandJump && cmd.Cell != nil {
		s.board.Focus(*cmd.Cell)
	}
	s.send(&network.ServerMessage{
		Type:    network.MsgTypeResult,
		Payload: network.ResultPayload{Request: network.MsgTypeCommand, OK: true, Cell: cmd.Cell, Command: &cmd},
	})
	return nil
}

// handleEdit opens the focused card in the editor. An empty focused cell
// opens nothing.
func (s *Session) handleEdit() error {
	if err := s.requireEdit(); err != nil {
		return err
	}
	focused := s.board.Focused()
	if s.board.Locked() {
		return fmt.Errorf("edit %s: %w", focused, board.ErrLocked)
	}
	res := network.ResultPayload{Request: network.MsgTypeEdit, OK: true, Cell: &focused}
	if v, ok := s.board.EditFocused(); ok {
		s.board.Select(v.Cell)
		res.Card = v.Card
		res.HTML = card.RenderText(v.Card.Text)
	}
	s.send(&network.ServerMessage{Type: network.MsgTypeResult, Payload: res})
	return nil
}

func (s *Session) handleVisible(raw json.RawMessage) error {
	var p network.VisiblePayload
	if len(raw) > 0 {
		if err := decode(raw, &p); err != nil {
			return err
		}
	}
	var views []*board.View
	if p.Radius == nil {
		views = s.board.Views()
	} else {
		center := s.board.Focused()
		if p.Center != nil {
			center = *p.Center
		}
		views = s.board.Visible(center, *p.Radius)
	}
	out := network.ViewsPayload{Views: make([]network.ViewPayload, len(views))}
	for i, v := range views {
		out.Views[i] = network.ViewPayload{
			Cell:     v.Cell,
			Position: v.Position,
			Card:     v.Card,
			HTML:     card.RenderText(v.Card.Text),
		}
	}
	s.send(&network.ServerMessage{Type: network.MsgTypeViews, Payload: out})
	return nil
}

func (s *Session) handleLoad(raw json.RawMessage) error {
	var p network.BoardIDPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if err := s.load(p.BoardID); err != nil {
		return err
	}
	s.ok(network.MsgTypeLoad, nil)
	return nil
}

func (s *Session) load(id string) error {
	doc, err := s.store.Load(s.ctx, id)
	if err != nil {
		return err
	}
	if err := s.replace(id, doc); err != nil {
		return err
	}
	log.Printf("Session %s loaded board %s (%d cards)", s.ID, id, s.board.Len())
	return nil
}

// replace swaps the whole board for doc and sends the result as a single
// document message rather than one event per card.
func (s *Session) replace(id string, doc board.Document) error {
	s.muted = true
	err := s.board.Deserialize(doc)
	s.muted = false
	if err != nil {
		return err
	}
	s.sendDocument(id)
	return nil
}

func (s *Session) handleSave(raw json.RawMessage) error {
	var p network.BoardIDPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if err := s.requireEdit(); err != nil {
		return err
	}
	if err := s.store.Save(s.ctx, p.BoardID, s.board.Serialize()); err != nil {
		return err
	}
	log.Printf("Session %s saved board %s (%d cards)", s.ID, p.BoardID, s.board.Len())
	s.ok(network.MsgTypeSave, nil)
	return nil
}

func (s *Session) handleImport(raw json.RawMessage) error {
	var p network.ImportPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if err := s.requireEdit(); err != nil {
		return err
	}
	doc, err := board.Decode(p.Document)
	if err != nil {
		return err
	}
	if err := s.replace("", doc); err != nil {
		return err
	}
	s.ok(network.MsgTypeImport, nil)
	return nil
}

func (s *Session) sendDocument(id string) {
	s.send(&network.ServerMessage{
		Type:    network.MsgTypeDocument,
		Payload: network.DocumentPayload{BoardID: id, Document: s.board.Serialize()},
	})
}

func (s *Session) sendError(code, message string) {
	s.send(&network.ServerMessage{
		Type:    network.MsgTypeError,
		Payload: network.ErrorPayload{Code: code, Message: message},
	})
}

// errorCode maps domain errors to protocol error codes
func errorCode(err error) string {
	switch {
	case errors.Is(err, errInvalidPayload):
		return network.ErrCodeInvalidMessage
	case errors.Is(err, errForbidden):
		return network.ErrCodeForbidden
	case errors.Is(err, board.ErrOccupiedCell):
		return network.ErrCodeOccupiedCell
	case errors.Is(err, board.ErrDuplicateCell):
		return network.ErrCodeDuplicateCell
	case errors.Is(err, board.ErrAbsentCell):
		return network.ErrCodeAbsentCell
	case errors.Is(err, board.ErrEmptyContent):
		return network.ErrCodeEmptyContent
	case errors.Is(err, board.ErrLocked):
		return network.ErrCodeLocked
	case errors.Is(err, board.ErrInvalidDocument), errors.Is(err, board.ErrNilCard):
		return network.ErrCodeInvalidDocument
	case errors.Is(err, storage.ErrNotFound):
		return network.ErrCodeNotFound
	case errors.Is(err, storage.ErrInvalidID):
		return network.ErrCodeInvalidMessage
	default:
		return network.ErrCodeInternal
	}
}
