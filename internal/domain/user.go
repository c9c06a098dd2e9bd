package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the coarse access level carried by a user record and its sessions.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether the given string names a role this service knows.
func ValidRole(raw string) bool {
	switch Role(raw) {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is the canonical identity record for the accounts service.
// PasswordHash is empty for accounts created through an OAuth provider;
// such accounts cannot log in with credentials until a password reset.
type User struct {
	UserID       uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the account carries a local credential.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}
