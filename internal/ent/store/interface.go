package store

import (
	"errors"
	"time"

	"github.com/oceandata/hydromon/pkg/ent/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// HydroFilter is a conjunction of exact-match predicates over
// observations. Zero-valued fields are ignored.
type HydroFilter struct {
	ID          *uint
	Location    string
	Basin       string
	SectionName string
	Date        *time.Time
}

// Store is an explicit persistence handle. It is passed to every consumer
// instead of living in a package-level singleton, so tests can run several
// independent instances.
type Store interface {
	// UserByID returns a user or ErrNotFound.
	UserByID(id uint) (*model.User, error)

	// UserByUsername returns a user or ErrNotFound.
	UserByUsername(username string) (*model.User, error)

	// Users returns all accounts ordered by ID.
	Users() ([]model.User, error)

	// CreateUser inserts a new account.
	CreateUser(u *model.User) error

	// UpdateUser persists changes of an existing account.
	UpdateUser(u *model.User) error

	// DeleteUser removes an account.
	DeleteUser(u *model.User) error

	// AdminCount returns the number of accounts with the admin role.
	AdminCount() (int, error)

	// HydroData returns observations matching every given predicate.
	HydroData(f HydroFilter) ([]model.HydroData, error)

	// InsertHydroData saves one chunk of observations in a single
	// transaction; on failure the whole chunk is rolled back.
	InsertHydroData(batch []model.HydroData) error

	// Fish returns all fish measurements ordered by ID.
	Fish() ([]model.Fish, error)

	// InsertFish saves one chunk of measurements in a single
	// transaction; on failure the whole chunk is rolled back.
	InsertFish(batch []model.Fish) error

	// Close releases the underlying connections.
	Close() error
}
