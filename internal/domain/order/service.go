package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/feastly/feastly/internal/domain/cart"
)

// PlaceOrderRequest holds the input for placing an order. The caller decides
// the initial status; the HTTP layer defaults it to StatusNew.
type PlaceOrderRequest struct {
	CustomerID   int64
	RestaurantID int64
	Status       Status
}

// Service owns the order commit transaction: snapshot the cart, assemble the
// draft, and persist header + lines + cart clear as one atomic unit of work.
type Service struct {
	carts  cart.Repository
	store  Store
	orders Repository
	locks  *customerLocks
	newID  func() string
	now    func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(carts cart.Repository, store Store, orders Repository) *Service {
	return &Service{
		carts:  carts,
		store:  store,
		orders: orders,
		locks:  newCustomerLocks(),
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
}

// PlaceOrder turns the customer's current cart into a committed order.
//
// The sequence is: read the cart snapshot, assemble and price the draft,
// then — inside a single database transaction — insert the order header,
// insert one order line per cart line, and delete the customer's cart rows.
// If any step after assembly fails the whole transaction rolls back and no
// partial state is ever visible. A per-customer lock spans the whole
// sequence so a double-submit cannot commit the same cart twice; the second
// call observes the cleared cart and fails with ErrEmptyCart.
//
// Validation failures (ErrEmptyCart, InvalidQuantityError) abort before any
// mutation. Infrastructure failures surface as ErrStoreUnavailable (snapshot
// read) or ErrTransactionFailed (commit); neither is retried internally.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	s.locks.lock(req.CustomerID)
	defer s.locks.unlock(req.CustomerID)

	snapshot, err := s.carts.Snapshot(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: read cart for customer %d: %w", ErrStoreUnavailable, req.CustomerID, err)
	}

	o, err := Assemble(req.CustomerID, req.RestaurantID, req.Status, snapshot)
	if err != nil {
		return nil, err
	}
	o.ID = s.newID()
	o.CreatedAt = s.now()

	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.InsertOrder(ctx, o); err != nil {
			return fmt.Errorf("insert order header: %w", err)
		}
		if err := tx.InsertLines(ctx, o.ID, o.Lines); err != nil {
			return fmt.Errorf("insert order lines: %w", err)
		}

		cleared, err := tx.ClearCart(ctx, req.CustomerID)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		// The snapshot and the delete must agree on the cart contents. A
		// mismatch means another writer touched the cart mid-commit. Compared
		// against the snapshot, not the order lines: duplicate dish rows
		// collapse during assembly.
		if cleared != int64(len(snapshot)) {
			return fmt.Errorf("cart changed during commit: snapshot had %d rows, cleared %d", len(snapshot), cleared)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	return o, nil
}

// UpdateStatus moves an order to the next lifecycle status, enforcing the
// transition table. Returns ErrNotFound for unknown orders and
// *InvalidTransitionError for moves the lifecycle does not allow.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next Status) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !o.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: o.Status, To: next}
	}

	if err := s.orders.UpdateStatus(ctx, orderID, next); err != nil {
		return fmt.Errorf("update status of order %q: %w", orderID, err)
	}
	return nil
}
