package domain

import (
	"errors"
	"strings"
)

// Role is the closed set of account roles. Roles are code, not data: the
// policy table and handlers switch on them directly.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
	RoleClient  Role = "client"
)

// DefaultRole is assigned when registration does not name one.
const DefaultRole = RoleClient

var ErrUnknownRole = errors.New("domain: unknown role")

// ParseRole maps a string onto a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManager:
		return RoleManager, nil
	case RoleUser:
		return RoleUser, nil
	case RoleClient:
		return RoleClient, nil
	default:
		return "", ErrUnknownRole
	}
}

// Privileged reports whether the role grants administrative access.
// Privileged roles can never be self-assigned at registration.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleManager
}

func (r Role) String() string { return string(r) }

// Status is the account lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
)

// CanSignIn reports whether the status permits authentication.
func (s Status) CanSignIn() bool { return s == StatusActive }

func (s Status) String() string { return string(s) }
