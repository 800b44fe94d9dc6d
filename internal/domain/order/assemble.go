package order

import (
	"github.com/shopspring/decimal"

	"github.com/feastly/feastly/internal/domain/cart"
)

// Assemble builds an unpersisted order draft from a cart snapshot. It is a
// pure function: it validates every line, copies the snapshot prices into
// order lines, and computes the total as the sum of per-line subtotals,
// rounded half-up to 2 decimal places once at the end to avoid compounding
// rounding error.
//
// A cart may hold several rows for the same dish; those collapse into one
// order line with the summed quantity, since an order stores at most one
// line per dish.
//
// The returned order has no ID and no CreatedAt; both are assigned at commit
// time by the Service.
func Assemble(customerID, restaurantID int64, status Status, snapshot []cart.Line) (*Order, error) {
	if len(snapshot) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]Line, 0, len(snapshot))
	byDish := make(map[int64]int, len(snapshot))
	for _, cl := range snapshot {
		if cl.Quantity <= 0 {
			return nil, &InvalidQuantityError{DishID: cl.DishID, Quantity: cl.Quantity}
		}
		if cl.UnitPrice.IsNegative() {
			return nil, &InvalidPriceError{DishID: cl.DishID}
		}

		if i, ok := byDish[cl.DishID]; ok {
			lines[i].Quantity += cl.Quantity
			continue
		}
		byDish[cl.DishID] = len(lines)
		lines = append(lines, Line{
			DishID:    cl.DishID,
			Quantity:  cl.Quantity,
			UnitPrice: cl.UnitPrice,
		})
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}

	return &Order{
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Status:       status,
		Total:        total.Round(2),
		Lines:        lines,
	}, nil
}
