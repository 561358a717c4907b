package user

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/mazzdev/pilotage/internal/auth"
	"github.com/mazzdev/pilotage/internal/rbac"
)

// Store provides database operations for users and sessions.
type Store struct {
	pool            *pgxpool.Pool
	sessionDuration time.Duration
}

// NewStore creates a new user store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool, sessionDuration time.Duration) *Store {
	if sessionDuration <= 0 {
		sessionDuration = 7 * 24 * time.Hour
	}
	return &Store{pool: pool, sessionDuration: sessionDuration}
}

// scanUser scans a user row, handling the JSONB roles column.
func scanUser(scan func(dest ...any) error) (*User, error) {
	u := &User{}
	var rolesJSON []byte
	err := scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &rolesJSON, &u.MonthlyHours, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(rolesJSON) > 0 {
		if err := json.Unmarshal(rolesJSON, &u.Roles); err != nil {
			return nil, fmt.Errorf("unmarshaling roles: %w", err)
		}
	}
	if u.Roles == nil {
		u.Roles = rbac.RoleSet{}
	}
	return u, nil
}

// marshalRoles converts a role set to JSON for storage, always including
// the base role.
func marshalRoles(roles rbac.RoleSet) ([]byte, error) {
	return json.Marshal(roles.WithBase())
}

// Create inserts a new user with a bcrypt-hashed password.
func (s *Store) Create(ctx context.Context, in CreateUserInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	monthlyHours := in.MonthlyHours
	if monthlyHours == 0 {
		monthlyHours = DefaultMonthlyHours
	}

	rolesJSON, err := marshalRoles(in.Roles)
	if err != nil {
		return nil, fmt.Errorf("marshaling roles: %w", err)
	}

	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, name, roles, monthly_hours)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, email, password_hash, name, roles, monthly_hours, created_at`,
			in.Email, string(hash), in.Name, rolesJSON, monthlyHours,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT id, email, password_hash, name, roles, monthly_hours, created_at
			 FROM users WHERE id = $1`, id,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email address.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT id, email, password_hash, name, roles, monthly_hours, created_at
			 FROM users WHERE email = $1`, email,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// List returns all users ordered by created_at.
func (s *Store) List(ctx context.Context) ([]*User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, password_hash, name, roles, monthly_hours, created_at
		 FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update replaces the mutable fields of the user with the given id.
func (s *Store) Update(ctx context.Context, id string, in UpdateUserInput) (*User, error) {
	rolesJSON, err := marshalRoles(in.Roles)
	if err != nil {
		return nil, fmt.Errorf("marshaling roles: %w", err)
	}

	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`UPDATE users SET email = $1, name = $2, roles = $3, monthly_hours = $4
			 WHERE id = $5
			 RETURNING id, email, password_hash, name, roles, monthly_hours, created_at`,
			in.Email, in.Name, rolesJSON, in.MonthlyHours, id,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return u, nil
}

// SetRoles replaces the user's role set (the demo role-switch feature).
func (s *Store) SetRoles(ctx context.Context, id string, roles rbac.RoleSet) (*User, error) {
	rolesJSON, err := marshalRoles(roles)
	if err != nil {
		return nil, fmt.Errorf("marshaling roles: %w", err)
	}

	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`UPDATE users SET roles = $1 WHERE id = $2
			 RETURNING id, email, password_hash, name, roles, monthly_hours, created_at`,
			rolesJSON, id,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("setting user roles: %w", err)
	}
	return u, nil
}

// Delete removes a user by id. Sessions and owned rows go with it via
// ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func CheckPassword(u *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// CreateSession creates a new session for the given user and returns the
// opaque plaintext token to hand to the client.
func (s *Store) CreateSession(ctx context.Context, userID string) (string, *Session, error) {
	plaintext, err := auth.GenerateToken()
	if err != nil {
		return "", nil, err
	}
	tokenHash := auth.HashToken(plaintext)

	now := time.Now()
	expiresAt := now.Add(s.sessionDuration)

	sess := &Session{}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO sessions (token_hash, user_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING token_hash, user_id, created_at, expires_at`,
		tokenHash, userID, now, expiresAt,
	).Scan(&sess.TokenHash, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		return "", nil, fmt.Errorf("creating session: %w", err)
	}

	return plaintext, sess, nil
}

// GetSessionUser looks up a session by its plaintext token and returns the
// associated user. Expired sessions do not resolve.
func (s *Store) GetSessionUser(ctx context.Context, plaintext string) (*User, error) {
	tokenHash := auth.HashToken(plaintext)

	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT u.id, u.email, u.password_hash, u.name, u.roles, u.monthly_hours, u.created_at
			 FROM sessions s JOIN users u ON s.user_id = u.id
			 WHERE s.token_hash = $1 AND s.expires_at > now()`,
			tokenHash,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("getting session user: %w", err)
	}
	return u, nil
}

// DeleteSession removes a session by its plaintext token.
func (s *Store) DeleteSession(ctx context.Context, plaintext string) error {
	tokenHash := auth.HashToken(plaintext)
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// CleanExpiredSessions deletes all sessions that have expired.
func (s *Store) CleanExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("cleaning expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
