package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors for order placement.
var (
	ErrEmptyCart         = fmt.Errorf("cart is empty")
	ErrNotFound          = fmt.Errorf("order not found")
	ErrStoreUnavailable  = fmt.Errorf("store unavailable")
	ErrTransactionFailed = fmt.Errorf("transaction failed")
)

// InvalidQuantityError indicates a cart line has a non-positive quantity.
type InvalidQuantityError struct {
	DishID   int64
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for dish %d, got %d", e.DishID, e.Quantity)
}

// InvalidPriceError indicates a cart line carries a negative unit price.
type InvalidPriceError struct {
	DishID int64
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("unit price must not be negative for dish %d", e.DishID)
}

// Line is a single dish position within an order. UnitPrice is the catalog
// price captured at commit time, so later menu changes never rewrite history.
type Line struct {
	DishID    int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns unit price multiplied by quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order represents a committed customer order. Everything except Status is
// immutable once the order has been persisted.
type Order struct {
	ID           string
	CustomerID   int64
	RestaurantID int64
	Status       Status
	Total        decimal.Decimal
	Lines        []Line
	CreatedAt    time.Time
}

// Tx exposes the write operations available inside a single order commit
// transaction. Implementations must apply all calls atomically: either the
// whole commit becomes visible or none of it does.
type Tx interface {
	InsertOrder(ctx context.Context, o *Order) error
	InsertLines(ctx context.Context, orderID string, lines []Line) error
	// ClearCart deletes every cart row for the customer and reports how many
	// rows it removed.
	ClearCart(ctx context.Context, customerID int64) (int64, error)
}

// Store runs a function within one atomic unit of work.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// HistoryEntry is one row of a customer's order history, enriched with the
// restaurant name and a flattened list of ordered dish names.
type HistoryEntry struct {
	OrderID        string
	RestaurantName string
	Status         Status
	Total          decimal.Decimal
	Items          string
	CreatedAt      time.Time
}

// RestaurantEntry is one row of a restaurant's incoming order feed.
type RestaurantEntry struct {
	OrderID      string
	CustomerID   int64
	CustomerName string
	Status       Status
	Total        decimal.Decimal
	DishNames    string
	CreatedAt    time.Time
}

// Repository defines read and status-update operations for committed orders.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	HistoryByCustomer(ctx context.Context, customerID int64) ([]HistoryEntry, error)
	ListByRestaurant(ctx context.Context, restaurantID int64, status string) ([]RestaurantEntry, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
