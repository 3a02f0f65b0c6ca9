package model

import (
	"strings"
	"time"
)

// Roles understood by the access layer. A user's role gates entire
// operation classes; ownership of individual resources is evaluated
// separately per request.
const (
	RoleClient  = "client"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	return s == RoleClient || s == RoleManager || s == RoleAdmin
}

// User represents a row in the `users` table. Emails are stored
// lower-cased and are unique case-insensitively. PasswordHash holds
// the scrypt digest in "hash.salt" form and is never serialized.
type User struct {
	ID             uint64    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	Name           string    `json:"name"`
	AvatarInitials string    `json:"avatarInitials"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Initials derives the default avatar initials from a display name:
// the first letter of the first two words, upper-cased.
func Initials(name string) string {
	var b strings.Builder
	for i, w := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r := []rune(w)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

// Session models an entry in the `sessions` table. The raw token is
// never stored; only its SHA-256 hex digest.
type Session struct {
	ID        uint64    // sessions.id
	UserID    uint64    // sessions.user_id
	TokenHash string    // sessions.token_hash
	ExpiresAt time.Time // sessions.expires_at
	CreatedAt time.Time // sessions.created_at
}
