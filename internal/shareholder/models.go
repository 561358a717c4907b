package shareholder

import "time"

// Shareholder (actionnaire) is a registry entry and a recipient of the
// monthly recap email.
type Shareholder struct {
	ID        string    `json:"id"`
	FirstName string    `json:"prenom"`
	LastName  string    `json:"nom"`
	Email     string    `json:"email"`
	Shares    int       `json:"nombreParts"`
	CreatedAt time.Time `json:"-"`
}

// FullName returns "First Last" for display and email greetings.
func (s *Shareholder) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Input holds the fields for creating or updating a shareholder.
type Input struct {
	FirstName string
	LastName  string
	Email     string
	Shares    int
}
