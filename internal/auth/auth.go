// Package auth resolves bearer tokens to authenticated users. Tokens are
// opaque: the client holds the plaintext, the database only ever sees the
// SHA-256 hash, and logout deletes the server-side session.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mazzdev/pilotage/internal/rbac"
)

// User is the authenticated view of an account, as injected into request
// contexts.
type User struct {
	ID           string
	Email        string
	Name         string
	Roles        rbac.RoleSet
	MonthlyHours int
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Roles.Has(rbac.RoleAdmin)
}

// SessionLookup resolves a plaintext session token to its user. A nil user
// with a nil error is never returned; missing or expired sessions error.
type SessionLookup interface {
	LookupSession(ctx context.Context, token string) (*User, error)
}

// GenerateToken returns a new opaque session token (64 hex characters).
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken returns the hex-encoded SHA-256 hash stored in place of the
// plaintext token.
func HashToken(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}
