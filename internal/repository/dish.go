package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/feastly/feastly/internal/domain/dish"
)

const (
	createDishSQL = `INSERT INTO dishes (restaurant_id, name, ingredients, image, price, description, category)
	VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	dishColumns = `id, restaurant_id, name, ingredients, image, price, description, category`

	getDishByIDSQL        = `SELECT ` + dishColumns + ` FROM dishes WHERE id = $1`
	listDishesSQL         = `SELECT ` + dishColumns + ` FROM dishes ORDER BY id`
	listDishesByRestSQL   = `SELECT ` + dishColumns + ` FROM dishes WHERE restaurant_id = $1 ORDER BY id`
	searchDishesByNameSQL = `SELECT ` + dishColumns + ` FROM dishes WHERE name ILIKE '%' || $1 || '%' ORDER BY id`
	listDishesByCatSQL    = `SELECT ` + dishColumns + ` FROM dishes WHERE category = $1 ORDER BY id`

	updateDishSQL = `UPDATE dishes SET
		name = COALESCE($2, name),
		ingredients = COALESCE($3, ingredients),
		image = COALESCE($4, image),
		price = COALESCE($5, price),
		description = COALESCE($6, description),
		category = COALESCE($7, category)
	WHERE id = $1`

	deleteDishSQL = `DELETE FROM dishes WHERE id = $1`
)

var _ dish.Repository = (*DishRepository)(nil)

// DishRepository implements dish.Repository backed by PostgreSQL.
type DishRepository struct {
	pool *pgxpool.Pool
}

// NewDishRepository returns a DishRepository that uses the given pool.
func NewDishRepository(pool *pgxpool.Pool) *DishRepository {
	return &DishRepository{pool: pool}
}

// Create inserts a new dish and returns its id.
func (r *DishRepository) Create(ctx context.Context, d *dish.Dish) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, createDishSQL,
		d.RestaurantID, d.Name, d.Ingredients, d.Image, d.Price, d.Description, d.Category,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating dish %q: %w", d.Name, err)
	}
	return id, nil
}

// GetByID returns a single dish by id.
func (r *DishRepository) GetByID(ctx context.Context, id int64) (*dish.Dish, error) {
	rows, err := r.pool.Query(ctx, getDishByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting dish %d: %w", id, err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDish)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dish.ErrNotFound
		}
		return nil, fmt.Errorf("getting dish %d: %w", id, err)
	}
	return &d, nil
}

// List returns every dish in the catalog ordered by id.
func (r *DishRepository) List(ctx context.Context) ([]dish.Dish, error) {
	rows, err := r.pool.Query(ctx, listDishesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing dishes: %w", err)
	}
	return pgx.CollectRows(rows, scanDish)
}

// ListByRestaurant returns a restaurant's menu.
func (r *DishRepository) ListByRestaurant(ctx context.Context, restaurantID int64) ([]dish.Dish, error) {
	rows, err := r.pool.Query(ctx, listDishesByRestSQL, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("listing dishes of restaurant %d: %w", restaurantID, err)
	}
	return pgx.CollectRows(rows, scanDish)
}

// SearchByName returns dishes whose name contains the query,
// case-insensitively.
func (r *DishRepository) SearchByName(ctx context.Context, query string) ([]dish.Dish, error) {
	rows, err := r.pool.Query(ctx, searchDishesByNameSQL, query)
	if err != nil {
		return nil, fmt.Errorf("searching dishes by name %q: %w", query, err)
	}
	return pgx.CollectRows(rows, scanDish)
}

// ListByCategory returns dishes with an exact category match.
func (r *DishRepository) ListByCategory(ctx context.Context, category string) ([]dish.Dish, error) {
	rows, err := r.pool.Query(ctx, listDishesByCatSQL, category)
	if err != nil {
		return nil, fmt.Errorf("listing dishes of category %q: %w", category, err)
	}
	return pgx.CollectRows(rows, scanDish)
}

// Update applies the non-nil fields of upd to the dish row.
func (r *DishRepository) Update(ctx context.Context, id int64, upd dish.Update) error {
	tag, err := r.pool.Exec(ctx, updateDishSQL,
		id, upd.Name, upd.Ingredients, upd.Image, upd.Price, upd.Description, upd.Category,
	)
	if err != nil {
		return fmt.Errorf("updating dish %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return dish.ErrNotFound
	}
	return nil
}

// Delete removes a dish from the catalog.
func (r *DishRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteDishSQL, id)
	if err != nil {
		return fmt.Errorf("deleting dish %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return dish.ErrNotFound
	}
	return nil
}

func scanDish(row pgx.CollectableRow) (dish.Dish, error) {
	var (
		d     dish.Dish
		price decimal.Decimal
	)
	err := row.Scan(
		&d.ID, &d.RestaurantID, &d.Name, &d.Ingredients, &d.Image, &price, &d.Description, &d.Category,
	)
	d.Price = price
	return d, err
}
