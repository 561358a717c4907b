package shareholder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides database operations for the shareholder registry.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanShareholder(scan func(dest ...any) error) (*Shareholder, error) {
	sh := &Shareholder{}
	err := scan(&sh.ID, &sh.FirstName, &sh.LastName, &sh.Email, &sh.Shares, &sh.CreatedAt)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// Create inserts a new shareholder. A duplicate email surfaces as a
// unique-violation error for the API layer to map to a conflict.
func (s *Store) Create(ctx context.Context, in Input) (*Shareholder, error) {
	sh, err := scanShareholder(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO actionnaires (first_name, last_name, email, shares)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, first_name, last_name, email, shares, created_at`,
			in.FirstName, in.LastName, in.Email, in.Shares,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("creating shareholder: %w", err)
	}
	return sh, nil
}

// GetByID retrieves a shareholder by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*Shareholder, error) {
	sh, err := scanShareholder(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT id, first_name, last_name, email, shares, created_at
			 FROM actionnaires WHERE id = $1`, id,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("getting shareholder: %w", err)
	}
	return sh, nil
}

// List returns all shareholders ordered by last then first name.
func (s *Store) List(ctx context.Context) ([]*Shareholder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, first_name, last_name, email, shares, created_at
		 FROM actionnaires ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("listing shareholders: %w", err)
	}
	defer rows.Close()

	var shareholders []*Shareholder
	for rows.Next() {
		sh, err := scanShareholder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning shareholder row: %w", err)
		}
		shareholders = append(shareholders, sh)
	}
	return shareholders, rows.Err()
}

// Update replaces all mutable fields of a shareholder.
func (s *Store) Update(ctx context.Context, id string, in Input) (*Shareholder, error) {
	sh, err := scanShareholder(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`UPDATE actionnaires
			 SET first_name = $1, last_name = $2, email = $3, shares = $4
			 WHERE id = $5
			 RETURNING id, first_name, last_name, email, shares, created_at`,
			in.FirstName, in.LastName, in.Email, in.Shares, id,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("updating shareholder: %w", err)
	}
	return sh, nil
}

// Delete removes a shareholder permanently.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM actionnaires WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting shareholder: %w", err)
	}
	return nil
}

// Emails returns every shareholder email, for the recap recipient list.
func (s *Store) Emails(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT email FROM actionnaires ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("listing shareholder emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scanning shareholder email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
