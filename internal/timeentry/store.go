package timeentry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides database operations for time entries.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// MonthRange returns the [start, end) bounds of a calendar month in UTC.
func MonthRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func scanEntry(scan func(dest ...any) error) (*Entry, error) {
	e := &Entry{}
	var tasksJSON []byte
	err := scan(&e.ID, &e.UserID, &e.Hours, &e.Date, &tasksJSON, &e.App, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(tasksJSON) > 0 {
		if err := json.Unmarshal(tasksJSON, &e.Tasks); err != nil {
			return nil, fmt.Errorf("unmarshaling tasks: %w", err)
		}
	}
	if e.Tasks == nil {
		e.Tasks = []Task{}
	}
	return e, nil
}

// Create inserts a new entry for its owner.
func (s *Store) Create(ctx context.Context, in CreateEntryInput) (*Entry, error) {
	tasksJSON, err := json.Marshal(in.Tasks)
	if err != nil {
		return nil, fmt.Errorf("marshaling tasks: %w", err)
	}

	e, err := scanEntry(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO time_entries (user_id, hours, entry_date, tasks, app)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, user_id, hours, entry_date, tasks, app, created_at`,
			in.UserID, in.Hours, in.Date, tasksJSON, in.App,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("creating time entry: %w", err)
	}
	return e, nil
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	e, err := scanEntry(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT id, user_id, hours, entry_date, tasks, app, created_at
			 FROM time_entries WHERE id = $1`, id,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("getting time entry: %w", err)
	}
	return e, nil
}

// Delete removes an entry permanently. Ownership is checked by the caller.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting time entry: %w", err)
	}
	return nil
}

// ListByUserMonth returns one user's entries for a month and product,
// oldest first.
func (s *Store) ListByUserMonth(ctx context.Context, userID string, month, year int, app string) ([]*Entry, error) {
	start, end := MonthRange(month, year)

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, hours, entry_date, tasks, app, created_at
		 FROM time_entries
		 WHERE user_id = $1 AND entry_date >= $2 AND entry_date < $3 AND app = $4
		 ORDER BY entry_date, created_at`,
		userID, start, end, app)
	if err != nil {
		return nil, fmt.Errorf("listing time entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning time entry row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListAllByMonth returns every user's entries for a month and product,
// joined with the owner, for the admin aggregate view.
func (s *Store) ListAllByMonth(ctx context.Context, month, year int, app string) ([]*AdminEntry, error) {
	start, end := MonthRange(month, year)

	rows, err := s.pool.Query(ctx,
		`SELECT t.id, t.user_id, t.hours, t.entry_date, t.tasks, t.app, t.created_at,
		        u.id, u.email, u.name, u.monthly_hours
		 FROM time_entries t JOIN users u ON t.user_id = u.id
		 WHERE t.entry_date >= $1 AND t.entry_date < $2 AND t.app = $3
		 ORDER BY t.entry_date, t.created_at`,
		start, end, app)
	if err != nil {
		return nil, fmt.Errorf("listing all time entries: %w", err)
	}
	defer rows.Close()

	var entries []*AdminEntry
	for rows.Next() {
		e := &AdminEntry{}
		var tasksJSON []byte
		err := rows.Scan(
			&e.ID, &e.UserID, &e.Hours, &e.Date, &tasksJSON, &e.App, &e.CreatedAt,
			&e.Owner.ID, &e.Owner.Email, &e.Owner.Name, &e.Owner.MonthlyHours,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning admin time entry row: %w", err)
		}
		if len(tasksJSON) > 0 {
			if err := json.Unmarshal(tasksJSON, &e.Tasks); err != nil {
				return nil, fmt.Errorf("unmarshaling tasks: %w", err)
			}
		}
		if e.Tasks == nil {
			e.Tasks = []Task{}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListRange returns every entry between from (inclusive) and to (exclusive)
// across all users and products, ordered by product then date. The monthly
// recap job consumes this.
func (s *Store) ListRange(ctx context.Context, from, to time.Time) ([]*AdminEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT t.id, t.user_id, t.hours, t.entry_date, t.tasks, t.app, t.created_at,
		        u.id, u.email, u.name, u.monthly_hours
		 FROM time_entries t JOIN users u ON t.user_id = u.id
		 WHERE t.entry_date >= $1 AND t.entry_date < $2
		 ORDER BY t.app, t.entry_date`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("listing time entries by range: %w", err)
	}
	defer rows.Close()

	var entries []*AdminEntry
	for rows.Next() {
		e := &AdminEntry{}
		var tasksJSON []byte
		err := rows.Scan(
			&e.ID, &e.UserID, &e.Hours, &e.Date, &tasksJSON, &e.App, &e.CreatedAt,
			&e.Owner.ID, &e.Owner.Email, &e.Owner.Name, &e.Owner.MonthlyHours,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning time entry row: %w", err)
		}
		if len(tasksJSON) > 0 {
			if err := json.Unmarshal(tasksJSON, &e.Tasks); err != nil {
				return nil, fmt.Errorf("unmarshaling tasks: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
