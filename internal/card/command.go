package card

import (
	"strings"

	"github.com/gravitas-games/domino/internal/hex"
)

// CommandKind classifies what an icon click does.
type CommandKind int

const (
	// CommandNone is a cosmetic icon.
	CommandNone CommandKind = iota
	// CommandJump focuses another cell ("#q,r").
	CommandJump
	// CommandImage shows an image overlay ("image:<url>").
	CommandImage
	// CommandDisplay shows a page in an embedded frame ("display:<url>").
	CommandDisplay
	// CommandOpen opens the target in a new window.
	CommandOpen
)

// String returns a human-readable representation of the kind.
func (k CommandKind) String() string {
	switch k {
	case CommandNone:
		return "none"
	case CommandJump:
		return "jump"
	case CommandImage:
		return "image"
	case CommandDisplay:
		return "display"
	case CommandOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Command is a parsed icon command.
type Command struct {
	Kind   CommandKind `json:"kind"`
	Target string      `json:"target,omitempty"`
	// Cell is set for CommandJump when the hash parses as a coordinate.
	Cell *hex.Axial `json:"cell,omitempty"`
}

// ParseCommand classifies an icon command string.
func ParseCommand(s string) Command {
	switch {
	case s == "":
		return Command{Kind: CommandNone}
	case strings.HasPrefix(s, "#"):
		cmd := Command{Kind: CommandJump, Target: s}
		if cell, err := hex.ParseAxial(s); err == nil {
			cmd.Cell = &cell
		}
		return cmd
	case strings.HasPrefix(s, "image:"):
		return Command{Kind: CommandImage, Target: strings.TrimPrefix(s, "image:")}
	case strings.HasPrefix(s, "display:"):
		return Command{Kind: CommandDisplay, Target: strings.TrimPrefix(s, "display:")}
	default:
		return Command{Kind: CommandOpen, Target: s}
	}
}
