// Package store persists users, profiles, daily logs and weight history.
// Postgres (pgx) is the primary backend; SQLite serves single-user offline
// installs.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested row does not exist or belongs
// to another user.
var ErrNotFound = errors.New("not found")

// ListLogsParams filters ListLogs. Zero values mean "no filter"; Start and
// End are inclusive YYYY-MM-DD dates.
type ListLogsParams struct {
	Type  string
	Start string
	End   string
	Limit int
}

// Store is everything the HTTP handlers need from persistence.
type Store interface {
	CreateUser(ctx context.Context, u User) (User, error)
	UserByUsername(ctx context.Context, username string) (User, error)
	UserIDByToken(ctx context.Context, token string) (int, error)

	GetProfile(ctx context.Context, userID int) (Profile, error)
	// SaveProfile inserts or replaces the whole profile row.
	SaveProfile(ctx context.Context, p Profile) (Profile, error)

	CreateLog(ctx context.Context, e LogEntry) (LogEntry, error)
	// ListLogs returns entries most recent first.
	ListLogs(ctx context.Context, userID int, params ListLogsParams) ([]LogEntry, error)
	DeleteLog(ctx context.Context, userID, id int) error
	DayTotals(ctx context.Context, userID int, start, end string) ([]DayTotals, error)
	// EarliestLogDate returns nil when the user has no logs.
	EarliestLogDate(ctx context.Context, userID int) (*string, error)

	ListWeights(ctx context.Context, userID int, start, end string) ([]WeightEntry, error)
	UpsertWeight(ctx context.Context, userID int, date string, weightKG float64) (WeightEntry, error)
	UpdateWeight(ctx context.Context, userID, id int, date *string, weightKG *float64) (WeightEntry, error)
	DeleteWeight(ctx context.Context, userID, id int) error

	Close() error
}

// Drivers accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the backend named by driver. dsn is a postgres URL or a
// sqlite file path.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgres(ctx, dsn)
	case DriverSQLite:
		return NewSQLite(dsn)
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}
}
