package user

import (
	"time"

	"github.com/mazzdev/pilotage/internal/rbac"
)

// DefaultMonthlyHours is the quota assigned when none is specified.
const DefaultMonthlyHours = 140

// User represents a registered account.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Name         string       `json:"name"`
	Roles        rbac.RoleSet `json:"roles"`
	MonthlyHours int          `json:"monthlyHours"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// CreateUserInput holds the fields required to create a new user. Password
// is plaintext here and bcrypt-hashed by the store.
type CreateUserInput struct {
	Email        string
	Password     string
	Name         string
	Roles        rbac.RoleSet
	MonthlyHours int
}

// UpdateUserInput is a full admin update: the endpoint requires every
// field on each call.
type UpdateUserInput struct {
	Email        string
	Name         string
	Roles        rbac.RoleSet
	MonthlyHours int
}

// Session represents an active user session.
type Session struct {
	TokenHash string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
