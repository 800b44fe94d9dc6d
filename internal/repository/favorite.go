package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feastly/feastly/internal/domain/favorite"
	"github.com/feastly/feastly/internal/domain/restaurant"
)

const (
	addFavoriteSQL = `INSERT INTO favorites (customer_id, restaurant_id)
	VALUES ($1, $2) ON CONFLICT DO NOTHING`

	listFavoritesSQL = `SELECT r.id, r.name, r.email, r.password_hash, r.location, r.description,
		r.contact_info, r.images, r.timings, r.created_at
	FROM restaurants r
	JOIN favorites f ON r.id = f.restaurant_id
	WHERE f.customer_id = $1
	ORDER BY f.created_at DESC`

	removeFavoriteSQL = `DELETE FROM favorites WHERE customer_id = $1 AND restaurant_id = $2`
)

var _ favorite.Repository = (*FavoriteRepository)(nil)

// FavoriteRepository implements favorite.Repository backed by PostgreSQL.
type FavoriteRepository struct {
	pool *pgxpool.Pool
}

// NewFavoriteRepository returns a FavoriteRepository that uses the given pool.
func NewFavoriteRepository(pool *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// Add marks a restaurant as a favorite of the customer. Adding the same
// favorite twice is a no-op.
func (r *FavoriteRepository) Add(ctx context.Context, customerID, restaurantID int64) error {
	_, err := r.pool.Exec(ctx, addFavoriteSQL, customerID, restaurantID)
	if err != nil {
		return fmt.Errorf("adding favorite %d for customer %d: %w", restaurantID, customerID, err)
	}
	return nil
}

// ListByCustomer returns the customer's favorite restaurants, newest first.
func (r *FavoriteRepository) ListByCustomer(ctx context.Context, customerID int64) ([]restaurant.Restaurant, error) {
	rows, err := r.pool.Query(ctx, listFavoritesSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites of customer %d: %w", customerID, err)
	}
	return pgx.CollectRows(rows, scanRestaurant)
}

// Remove deletes a favorite. Returns favorite.ErrNotFound when the pair does
// not exist.
func (r *FavoriteRepository) Remove(ctx context.Context, customerID, restaurantID int64) error {
	tag, err := r.pool.Exec(ctx, removeFavoriteSQL, customerID, restaurantID)
	if err != nil {
		return fmt.Errorf("removing favorite %d for customer %d: %w", restaurantID, customerID, err)
	}
	if tag.RowsAffected() == 0 {
		return favorite.ErrNotFound
	}
	return nil
}
