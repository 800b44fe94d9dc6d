package dish

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested dish does not exist.
var ErrNotFound = errors.New("dish not found")

// Dish is a menu item offered by a restaurant.
type Dish struct {
	ID           int64
	RestaurantID int64
	Name         string
	Ingredients  string
	Image        string
	Price        decimal.Decimal
	Description  string
	Category     string
}

// Update carries the mutable dish fields. Nil pointers leave the
// corresponding column untouched.
type Update struct {
	Name        *string
	Ingredients *string
	Image       *string
	Price       *decimal.Decimal
	Description *string
	Category    *string
}

// Empty reports whether no field is set.
func (u Update) Empty() bool {
	return u.Name == nil && u.Ingredients == nil && u.Image == nil &&
		u.Price == nil && u.Description == nil && u.Category == nil
}

// Repository defines persistence operations for the dish catalog.
type Repository interface {
	Create(ctx context.Context, d *Dish) (int64, error)
	GetByID(ctx context.Context, id int64) (*Dish, error)
	List(ctx context.Context) ([]Dish, error)
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]Dish, error)
	SearchByName(ctx context.Context, query string) ([]Dish, error)
	ListByCategory(ctx context.Context, category string) ([]Dish, error)
	Update(ctx context.Context, id int64, upd Update) error
	Delete(ctx context.Context, id int64) error
}
