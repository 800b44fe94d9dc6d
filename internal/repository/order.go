package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/feastly/feastly/internal/domain/order"
)

const (
	getOrderSQL = `SELECT id, customer_id, restaurant_id, status, total, created_at
	FROM orders WHERE id = $1`

	getOrderLinesSQL = `SELECT dish_id, quantity, unit_price
	FROM order_items WHERE order_id = $1`

	customerHistorySQL = `SELECT o.id, r.name, o.status, o.total,
		string_agg(d.name, ', ' ORDER BY d.name), o.created_at
	FROM orders o
	JOIN restaurants r ON o.restaurant_id = r.id
	JOIN order_items oi ON o.id = oi.order_id
	JOIN dishes d ON oi.dish_id = d.id
	WHERE o.customer_id = $1
	GROUP BY o.id, r.name
	ORDER BY o.created_at DESC`

	restaurantOrdersSQL = `SELECT o.id, o.customer_id, c.name, o.status, o.total,
		string_agg(d.name, ', ' ORDER BY d.name), o.created_at
	FROM orders o
	JOIN customers c ON o.customer_id = c.id
	JOIN order_items oi ON o.id = oi.order_id
	JOIN dishes d ON oi.dish_id = d.id
	WHERE o.restaurant_id = $1 AND ($2 = '' OR o.status = $2)
	GROUP BY o.id, c.name
	ORDER BY o.created_at DESC`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID returns a single order with its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var (
		o      order.Order
		status string
		total  decimal.Decimal
	)
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(
		&o.ID, &o.CustomerID, &o.RestaurantID, &status, &total, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o.Status = order.Status(status)
	o.Total = total

	rows, err := r.pool.Query(ctx, getOrderLinesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting lines of order %q: %w", id, err)
	}
	o.Lines, err = pgx.CollectRows(rows, scanOrderLine)
	if err != nil {
		return nil, fmt.Errorf("getting lines of order %q: %w", id, err)
	}

	return &o, nil
}

// HistoryByCustomer returns the customer's past orders, newest first.
func (r *OrderRepository) HistoryByCustomer(ctx context.Context, customerID int64) ([]order.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, customerHistorySQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of customer %d: %w", customerID, err)
	}
	return pgx.CollectRows(rows, scanHistoryEntry)
}

// ListByRestaurant returns orders placed at a restaurant, optionally filtered
// by status. An empty status matches everything.
func (r *OrderRepository) ListByRestaurant(ctx context.Context, restaurantID int64, status string) ([]order.RestaurantEntry, error) {
	rows, err := r.pool.Query(ctx, restaurantOrdersSQL, restaurantID, status)
	if err != nil {
		return nil, fmt.Errorf("listing orders of restaurant %d: %w", restaurantID, err)
	}
	return pgx.CollectRows(rows, scanRestaurantEntry)
}

// UpdateStatus sets the status of an existing order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrderLine(row pgx.CollectableRow) (order.Line, error) {
	var (
		l     order.Line
		price decimal.Decimal
	)
	err := row.Scan(&l.DishID, &l.Quantity, &price)
	l.UnitPrice = price
	return l, err
}

func scanHistoryEntry(row pgx.CollectableRow) (order.HistoryEntry, error) {
	var (
		e      order.HistoryEntry
		status string
		total  decimal.Decimal
	)
	err := row.Scan(&e.OrderID, &e.RestaurantName, &status, &total, &e.Items, &e.CreatedAt)
	e.Status = order.Status(status)
	e.Total = total
	return e, err
}

func scanRestaurantEntry(row pgx.CollectableRow) (order.RestaurantEntry, error) {
	var (
		e      order.RestaurantEntry
		status string
		total  decimal.Decimal
	)
	err := row.Scan(&e.OrderID, &e.CustomerID, &e.CustomerName, &status, &total, &e.DishNames, &e.CreatedAt)
	e.Status = order.Status(status)
	e.Total = total
	return e, err
}
