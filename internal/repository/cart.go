package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/feastly/feastly/internal/domain/cart"
)

const (
	cartSnapshotSQL = `SELECT c.id, c.customer_id, c.dish_id, d.name, d.image, d.restaurant_id,
		c.quantity, d.price, c.created_at
	FROM cart_items c
	JOIN dishes d ON c.dish_id = d.id
	WHERE c.customer_id = $1
	ORDER BY c.id`

	addCartItemSQL = `INSERT INTO cart_items (customer_id, dish_id, quantity)
	VALUES ($1, $2, $3) RETURNING id`

	updateCartQuantitySQL = `UPDATE cart_items SET quantity = $2 WHERE id = $1`

	removeCartItemSQL = `DELETE FROM cart_items WHERE id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Snapshot reads the customer's cart joined with current catalog prices.
// An unknown customer yields an empty slice.
func (r *CartRepository) Snapshot(ctx context.Context, customerID int64) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, cartSnapshotSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("reading cart of customer %d: %w", customerID, err)
	}
	return pgx.CollectRows(rows, scanCartLine)
}

// AddItem appends a dish selection to the cart and returns the new line id.
func (r *CartRepository) AddItem(ctx context.Context, customerID, dishID int64, quantity int) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, addCartItemSQL, customerID, dishID, quantity).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("adding dish %d to cart of customer %d: %w", dishID, customerID, err)
	}
	return id, nil
}

// UpdateQuantity changes the quantity of an existing cart line.
func (r *CartRepository) UpdateQuantity(ctx context.Context, lineID int64, quantity int) error {
	tag, err := r.pool.Exec(ctx, updateCartQuantitySQL, lineID, quantity)
	if err != nil {
		return fmt.Errorf("updating cart line %d: %w", lineID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// RemoveItem deletes a single cart line.
func (r *CartRepository) RemoveItem(ctx context.Context, lineID int64) error {
	tag, err := r.pool.Exec(ctx, removeCartItemSQL, lineID)
	if err != nil {
		return fmt.Errorf("removing cart line %d: %w", lineID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// Clear deletes every cart line for the customer and reports how many rows
// were removed.
func (r *CartRepository) Clear(ctx context.Context, customerID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, clearCartSQL, customerID)
	if err != nil {
		return 0, fmt.Errorf("clearing cart of customer %d: %w", customerID, err)
	}
	return tag.RowsAffected(), nil
}

func scanCartLine(row pgx.CollectableRow) (cart.Line, error) {
	var (
		l     cart.Line
		price decimal.Decimal
	)
	err := row.Scan(
		&l.ID, &l.CustomerID, &l.DishID, &l.DishName, &l.Image, &l.RestaurantID,
		&l.Quantity, &price, &l.CreatedAt,
	)
	l.UnitPrice = price
	return l, err
}
