package favorite

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/feastly/feastly/internal/domain/restaurant"
)

// ErrNotFound is returned when removing a favorite that does not exist.
var ErrNotFound = errors.New("favorite not found")

// Repository defines persistence operations for a customer's favorite
// restaurants.
type Repository interface {
	Add(ctx context.Context, customerID, restaurantID int64) error
	ListByCustomer(ctx context.Context, customerID int64) ([]restaurant.Restaurant, error)
	Remove(ctx context.Context, customerID, restaurantID int64) error
}
