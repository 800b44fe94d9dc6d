package restaurant

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested restaurant does not exist.
	ErrNotFound = errors.New("restaurant not found")
	// ErrDuplicateEmail is returned when signing up with an email that is
	// already registered.
	ErrDuplicateEmail = errors.New("email already exists")
)

// Restaurant is a registered seller account together with its public listing
// details.
type Restaurant struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Location     string
	Description  string
	ContactInfo  string
	Images       string
	Timings      string
	CreatedAt    time.Time
}

// ProfileUpdate carries the mutable listing fields. Nil pointers leave the
// corresponding column untouched.
type ProfileUpdate struct {
	Name        *string
	Location    *string
	Description *string
	ContactInfo *string
	Images      *string
	Timings     *string
}

// Empty reports whether no field is set.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Location == nil && u.Description == nil &&
		u.ContactInfo == nil && u.Images == nil && u.Timings == nil
}

// Repository defines persistence operations for restaurant accounts.
type Repository interface {
	Create(ctx context.Context, r *Restaurant) (int64, error)
	GetByID(ctx context.Context, id int64) (*Restaurant, error)
	GetByEmail(ctx context.Context, email string) (*Restaurant, error)
	List(ctx context.Context) ([]Restaurant, error)
	SearchByName(ctx context.Context, query string) ([]Restaurant, error)
	SearchByLocation(ctx context.Context, location string) ([]Restaurant, error)
	UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) error
	Delete(ctx context.Context, id int64) error
}
