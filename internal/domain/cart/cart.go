package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrLineNotFound is returned when a referenced cart line does not exist.
var ErrLineNotFound = errors.New("cart line not found")

// Line is one pending (dish, quantity) selection in a customer's cart.
// UnitPrice, DishName, Image and RestaurantID are joined from the dish
// catalog at read time; the cart itself stores only the dish reference and
// quantity.
type Line struct {
	ID           int64
	CustomerID   int64
	DishID       int64
	DishName     string
	Image        string
	RestaurantID int64
	Quantity     int
	UnitPrice    decimal.Decimal
	CreatedAt    time.Time
}

// Repository defines persistence operations for customer carts.
//
// Snapshot is the point-in-time read used as the basis for order totals:
// each line is priced at the current catalog price. An unknown customer
// simply yields an empty snapshot.
type Repository interface {
	Snapshot(ctx context.Context, customerID int64) ([]Line, error)
	AddItem(ctx context.Context, customerID, dishID int64, quantity int) (int64, error)
	UpdateQuantity(ctx context.Context, lineID int64, quantity int) error
	RemoveItem(ctx context.Context, lineID int64) error
	Clear(ctx context.Context, customerID int64) (int64, error)
}
