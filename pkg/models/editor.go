package models

import "time"

// Editor represents a person connected to a board session
type Editor struct {
	// From JWT claims
	ID          string `json:"id"`          // Converted from int64 user_id
	Username    string `json:"username"`    // JWT claim
	Email       string `json:"email"`       // JWT claim
	Permissions int64  `json:"permissions"` // JWT claim: bitwise permission flags
	Activated   int64  `json:"activated"`   // JWT claim: activation timestamp or ban status
	AuthMethod  string `json:"auth_method"` // JWT claim: "password", "oauth" or "anonymous"

	// Connection state
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`

	// Session state
	SessionID string `json:"session_id"`
}

// PermEdit allows unlocking the board and changing cards
const PermEdit int64 = 1 << 0

// Anonymous returns the identity used when authentication is disabled
func Anonymous(id string) *Editor {
	return &Editor{
		ID:          id,
		Username:    "anonymous",
		Permissions: PermEdit,
		Activated:   1,
		AuthMethod:  "anonymous",
	}
}

// IsActive checks if the account is activated and not banned
func (e *Editor) IsActive() bool {
	// activated > 0 means activated
	// activated == 0 means not activated
	// activated == -1 means banned
	return e.Activated > 0
}

// IsBanned checks if the account is banned
func (e *Editor) IsBanned() bool {
	return e.Activated == -1
}

// CanEdit reports whether the editor may unlock the board
func (e *Editor) CanEdit() bool {
	return e.IsActive() && e.Permissions&PermEdit != 0
}
