package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrDuplicateEmail is returned when signing up with an email that is
	// already registered.
	ErrDuplicateEmail = errors.New("email already exists")
)

// Customer is a registered buyer account. PasswordHash is a bcrypt hash and
// never leaves the server.
type Customer struct {
	ID             int64
	Name           string
	Email          string
	PasswordHash   string
	ProfilePicture string
	Country        string
	State          string
	CreatedAt      time.Time
}

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// corresponding column untouched.
type ProfileUpdate struct {
	Name           *string
	ProfilePicture *string
	Country        *string
	State          *string
}

// Empty reports whether no field is set.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.ProfilePicture == nil && u.Country == nil && u.State == nil
}

// Repository defines persistence operations for customer accounts.
type Repository interface {
	Create(ctx context.Context, c *Customer) (int64, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) error
}
