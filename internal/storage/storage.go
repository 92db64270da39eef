// Package storage persists serialized board documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/gravitas-games/domino/internal/board"
)

// ErrNotFound is returned when no document exists for an ID.
var ErrNotFound = errors.New("storage: board not found")

// ErrInvalidID is returned for IDs that are empty or contain unsafe characters.
var ErrInvalidID = errors.New("storage: invalid board id")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Store persists and retrieves board documents.
type Store interface {
	Save(ctx context.Context, id string, doc board.Document) error
	Load(ctx context.Context, id string) (board.Document, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// ValidateID checks that id is safe to use as a file name or key suffix.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
