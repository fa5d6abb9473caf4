package entity

import (
	"time"
)

// Role is the exclusive role a user account commits to. It starts as unset and
// transitions exactly once; after the transition role-specific data
// partitioning is enforced.
type Role string

const (
	RoleUnset   Role = "unset"
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleBoth    Role = "both"
)

// Selectable reports whether the role is a valid target for role selection.
func (r Role) Selectable() bool {
	return r == RoleStudent || r == RoleMentor || r == RoleBoth
}

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in Password.
type User struct {
	ID                     string
	Email                  string
	Password               string
	Name                   string
	Role                   Role
	RoleSelectionCompleted bool
	IsReviewer             bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
