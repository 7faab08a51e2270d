package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role determines what a caller is allowed to do.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the pre-validated caller identity. Uniqueness of usernames is
// case-insensitive; the repository enforces it on lookup and insert.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin returns true for administrator accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeUsername trims the username and collapses internal whitespace
// runs to a single space. Returns "" for unusable input.
func NormalizeUsername(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
