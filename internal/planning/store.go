package planning

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides database operations for monthly quota overrides.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Get returns the override for the exact tuple, or nil when the user's
// default applies.
func (s *Store) Get(ctx context.Context, userID string, month, year int, app string) (*Planning, error) {
	p := &Planning{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, month, year, app, hours, updated_at
		 FROM hours_plannings
		 WHERE user_id = $1 AND month = $2 AND year = $3 AND app = $4`,
		userID, month, year, app,
	).Scan(&p.ID, &p.UserID, &p.Month, &p.Year, &p.App, &p.Hours, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting hours planning: %w", err)
	}
	return p, nil
}

// ListYear returns every override for (user, year, app) keyed by month.
func (s *Store) ListYear(ctx context.Context, userID string, year int, app string) (map[int]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT month, hours FROM hours_plannings
		 WHERE user_id = $1 AND year = $2 AND app = $3`,
		userID, year, app)
	if err != nil {
		return nil, fmt.Errorf("listing hours plannings: %w", err)
	}
	defer rows.Close()

	byMonth := make(map[int]int)
	for rows.Next() {
		var month, hours int
		if err := rows.Scan(&month, &hours); err != nil {
			return nil, fmt.Errorf("scanning hours planning row: %w", err)
		}
		byMonth[month] = hours
	}
	return byMonth, rows.Err()
}

// Upsert creates or replaces the override for the tuple in one statement.
// The unique index on (user_id, month, year, app) arbitrates concurrent
// upserts: the second writer updates instead of duplicating.
func (s *Store) Upsert(ctx context.Context, userID string, month, year int, app string, hoursVal int) (*Planning, error) {
	p := &Planning{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO hours_plannings (user_id, month, year, app, hours)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, month, year, app)
		 DO UPDATE SET hours = EXCLUDED.hours, updated_at = now()
		 RETURNING id, user_id, month, year, app, hours, updated_at`,
		userID, month, year, app, hoursVal,
	).Scan(&p.ID, &p.UserID, &p.Month, &p.Year, &p.App, &p.Hours, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting hours planning: %w", err)
	}
	return p, nil
}

// Delete resets the tuple to the user's default quota. Deleting a tuple
// that has no override is a no-op.
func (s *Store) Delete(ctx context.Context, userID string, month, year int, app string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM hours_plannings
		 WHERE user_id = $1 AND month = $2 AND year = $3 AND app = $4`,
		userID, month, year, app)
	if err != nil {
		return fmt.Errorf("deleting hours planning: %w", err)
	}
	return nil
}

// QuotasFor returns the override hours for each of the given users that has
// one for (month, year, app). Users without an override are absent from the
// map; callers fall back to the default quota. One query replaces the
// per-row lookup the admin views would otherwise need.
func (s *Store) QuotasFor(ctx context.Context, userIDs []string, month, year int, app string) (map[string]int, error) {
	if len(userIDs) == 0 {
		return map[string]int{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT user_id, hours FROM hours_plannings
		 WHERE user_id = ANY($1) AND month = $2 AND year = $3 AND app = $4`,
		userIDs, month, year, app)
	if err != nil {
		return nil, fmt.Errorf("querying quotas: %w", err)
	}
	defer rows.Close()

	quotas := make(map[string]int)
	for rows.Next() {
		var userID string
		var hoursVal int
		if err := rows.Scan(&userID, &hoursVal); err != nil {
			return nil, fmt.Errorf("scanning quota row: %w", err)
		}
		quotas[userID] = hoursVal
	}
	return quotas, rows.Err()
}
