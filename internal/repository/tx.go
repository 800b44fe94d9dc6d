package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feastly/feastly/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, customer_id, restaurant_id, status, total, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

	clearCartSQL = `DELETE FROM cart_items WHERE customer_id = $1`
)

var _ order.Store = (*OrderStore)(nil)

// OrderStore implements order.Store backed by PostgreSQL. Each InTx call maps
// to one database transaction, so the order header, order lines, and cart
// clear commit or roll back together.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore returns an OrderStore that uses the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// InTx begins a transaction, runs fn against it, and commits. If fn returns
// an error the transaction is rolled back and the rollback error, if any, is
// joined onto the original.
func (s *OrderStore) InTx(ctx context.Context, fn func(tx order.Tx) error) (txErr error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// orderTx adapts a pgx.Tx to the order.Tx write operations.
type orderTx struct {
	tx pgx.Tx
}

var _ order.Tx = (*orderTx)(nil)

func (t *orderTx) InsertOrder(ctx context.Context, o *order.Order) error {
	_, err := t.tx.Exec(ctx, insertOrderSQL,
		o.ID, o.CustomerID, o.RestaurantID, string(o.Status), o.Total, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}
	return nil
}

func (t *orderTx) InsertLines(ctx context.Context, orderID string, lines []order.Line) error {
	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "dish_id", "quantity", "unit_price"},
		pgx.CopyFromSlice(len(lines), func(i int) ([]any, error) {
			l := lines[i]
			return []any{orderID, l.DishID, l.Quantity, l.UnitPrice}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("inserting %d order lines for order %q: %w", len(lines), orderID, err)
	}
	return nil
}

func (t *orderTx) ClearCart(ctx context.Context, customerID int64) (int64, error) {
	tag, err := t.tx.Exec(ctx, clearCartSQL, customerID)
	if err != nil {
		return 0, fmt.Errorf("clearing cart for customer %d: %w", customerID, err)
	}
	return tag.RowsAffected(), nil
}
