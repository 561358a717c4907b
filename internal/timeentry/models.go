package timeentry

import "time"

// Task is one line of work inside an entry.
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Entry is an immutable record of hours worked on one product for one day.
// Entries are never updated in place: correcting one means deleting and
// recreating it.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Hours     float64   `json:"hours"`
	Date      time.Time `json:"-"`
	Tasks     []Task    `json:"tasks"`
	App       string    `json:"app"`
	CreatedAt time.Time `json:"-"`
}

// Owner is the denormalized view of an entry's user for admin listings.
type Owner struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	MonthlyHours int    `json:"-"`
}

// AdminEntry is an entry joined with its owner.
type AdminEntry struct {
	Entry
	Owner Owner
}

// CreateEntryInput holds the fields for a new entry. Hours arrive already
// parsed to a number at the HTTP boundary.
type CreateEntryInput struct {
	UserID string
	Hours  float64
	Date   time.Time
	Tasks  []Task
	App    string
}
