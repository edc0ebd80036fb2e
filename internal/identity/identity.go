// Package identity owns the authenticated identity and its persistence.
//
// The identity is the only cross-command mutable state: it is written
// on login, erased on logout, and restored once at startup. All
// network-calling components read the bearer token through the Store
// on each call, so a logout mid-session is observed by the next
// request rather than retroactively.
package identity

import (
	"errors"
	"fmt"
)

// Role is the advisory access level carried by an identity. It gates
// which commands the client offers; the backend independently rejects
// unauthorized calls and is the actual authority.
type Role string

// Roles issued by the backend.
const (
	RoleAdmin    Role = "admin"
	RoleEmployer Role = "employer"
)

// Valid reports whether the role is drawn from the fixed enum.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployer
}

// Sentinel errors for identity operations.
var (
	// ErrEmptyToken indicates an identity without a bearer token.
	ErrEmptyToken = errors.New("identity token is empty")

	// ErrInvalidRole indicates a role outside the fixed enum.
	ErrInvalidRole = errors.New("invalid role")
)

// Identity is an authenticated user: who they are, what they may see,
// and the opaque bearer credential presented on each request.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Token    string `json:"token"`
}

// Validate enforces the identity invariant: a non-nil identity always
// carries a non-empty token and a known role.
func (id Identity) Validate() error {
	if id.Token == "" {
		return ErrEmptyToken
	}
	if !id.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, id.Role)
	}
	return nil
}

// IsAdmin reports whether the identity may be offered admin commands.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}
