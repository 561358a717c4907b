package api

import (
	"context"
	"strconv"
	"time"

	"github.com/mazzdev/pilotage/internal/planning"
	"github.com/mazzdev/pilotage/internal/rbac"
	"github.com/mazzdev/pilotage/internal/shareholder"
	"github.com/mazzdev/pilotage/internal/timeentry"
	"github.com/mazzdev/pilotage/internal/user"
)

// The handlers depend on these narrow interfaces rather than the concrete
// pgx stores, so tests exercise them with in-memory fakes.

// UserStore is the user and session surface the handlers need.
type UserStore interface {
	Create(ctx context.Context, in user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	Update(ctx context.Context, id string, in user.UpdateUserInput) (*user.User, error)
	SetRoles(ctx context.Context, id string, roles rbac.RoleSet) (*user.User, error)
	Delete(ctx context.Context, id string) error
	CreateSession(ctx context.Context, userID string) (string, *user.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// TimeEntryStore is the time entry surface the handlers need.
type TimeEntryStore interface {
	Create(ctx context.Context, in timeentry.CreateEntryInput) (*timeentry.Entry, error)
	GetByID(ctx context.Context, id string) (*timeentry.Entry, error)
	Delete(ctx context.Context, id string) error
	ListByUserMonth(ctx context.Context, userID string, month, year int, app string) ([]*timeentry.Entry, error)
	ListAllByMonth(ctx context.Context, month, year int, app string) ([]*timeentry.AdminEntry, error)
}

// PlanningStore is the quota override surface the handlers need.
type PlanningStore interface {
	Get(ctx context.Context, userID string, month, year int, app string) (*planning.Planning, error)
	ListYear(ctx context.Context, userID string, year int, app string) (map[int]int, error)
	Upsert(ctx context.Context, userID string, month, year int, app string, hours int) (*planning.Planning, error)
	Delete(ctx context.Context, userID string, month, year int, app string) error
	QuotasFor(ctx context.Context, userIDs []string, month, year int, app string) (map[string]int, error)
}

// ShareholderStore is the registry surface the handlers need.
type ShareholderStore interface {
	Create(ctx context.Context, in shareholder.Input) (*shareholder.Shareholder, error)
	GetByID(ctx context.Context, id string) (*shareholder.Shareholder, error)
	List(ctx context.Context) ([]*shareholder.Shareholder, error)
	Update(ctx context.Context, id string, in shareholder.Input) (*shareholder.Shareholder, error)
	Delete(ctx context.Context, id string) error
}

// monthYearOrNow parses optional month/year query values, defaulting to the
// current UTC month.
func monthYearOrNow(monthStr, yearStr string) (int, int, bool) {
	now := time.Now().UTC()
	month, year := int(now.Month()), now.Year()

	if monthStr != "" {
		m, err := strconv.Atoi(monthStr)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, false
		}
		month = m
	}
	if yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil || y < 2000 || y > 2200 {
			return 0, 0, false
		}
		year = y
	}
	return month, year, true
}
