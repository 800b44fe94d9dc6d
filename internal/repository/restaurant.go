package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feastly/feastly/internal/domain/restaurant"
)

const (
	createRestaurantSQL = `INSERT INTO restaurants (name, email, password_hash, location, description, contact_info, images, timings)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	restaurantColumns = `id, name, email, password_hash, location, description, contact_info, images, timings, created_at`

	getRestaurantByIDSQL    = `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`
	getRestaurantByEmailSQL = `SELECT ` + restaurantColumns + ` FROM restaurants WHERE email = $1`
	listRestaurantsSQL      = `SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY id`

	searchRestaurantsByNameSQL     = `SELECT ` + restaurantColumns + ` FROM restaurants WHERE name ILIKE '%' || $1 || '%' ORDER BY id`
	searchRestaurantsByLocationSQL = `SELECT ` + restaurantColumns + ` FROM restaurants WHERE location ILIKE '%' || $1 || '%' ORDER BY id`

	updateRestaurantProfileSQL = `UPDATE restaurants SET
		name = COALESCE($2, name),
		location = COALESCE($3, location),
		description = COALESCE($4, description),
		contact_info = COALESCE($5, contact_info),
		images = COALESCE($6, images),
		timings = COALESCE($7, timings)
	WHERE id = $1`

	deleteRestaurantSQL = `DELETE FROM restaurants WHERE id = $1`
)

var _ restaurant.Repository = (*RestaurantRepository)(nil)

// RestaurantRepository implements restaurant.Repository backed by PostgreSQL.
type RestaurantRepository struct {
	pool *pgxpool.Pool
}

// NewRestaurantRepository returns a RestaurantRepository that uses the given pool.
func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

// Create inserts a new restaurant account. Returns
// restaurant.ErrDuplicateEmail when the email is already registered.
func (r *RestaurantRepository) Create(ctx context.Context, rest *restaurant.Restaurant) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, createRestaurantSQL,
		rest.Name, rest.Email, rest.PasswordHash, rest.Location,
		rest.Description, rest.ContactInfo, rest.Images, rest.Timings,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, restaurant.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("creating restaurant %q: %w", rest.Email, err)
	}
	return id, nil
}

// GetByID returns a single restaurant by id.
func (r *RestaurantRepository) GetByID(ctx context.Context, id int64) (*restaurant.Restaurant, error) {
	return r.get(ctx, getRestaurantByIDSQL, id)
}

// GetByEmail returns a single restaurant by email.
func (r *RestaurantRepository) GetByEmail(ctx context.Context, email string) (*restaurant.Restaurant, error) {
	return r.get(ctx, getRestaurantByEmailSQL, email)
}

func (r *RestaurantRepository) get(ctx context.Context, sql string, arg any) (*restaurant.Restaurant, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting restaurant: %w", err)
	}

	rest, err := pgx.CollectExactlyOneRow(rows, scanRestaurant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, restaurant.ErrNotFound
		}
		return nil, fmt.Errorf("getting restaurant: %w", err)
	}
	return &rest, nil
}

// List returns every restaurant ordered by id.
func (r *RestaurantRepository) List(ctx context.Context) ([]restaurant.Restaurant, error) {
	rows, err := r.pool.Query(ctx, listRestaurantsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}
	return pgx.CollectRows(rows, scanRestaurant)
}

// SearchByName returns restaurants whose name contains the query,
// case-insensitively.
func (r *RestaurantRepository) SearchByName(ctx context.Context, query string) ([]restaurant.Restaurant, error) {
	rows, err := r.pool.Query(ctx, searchRestaurantsByNameSQL, query)
	if err != nil {
		return nil, fmt.Errorf("searching restaurants by name %q: %w", query, err)
	}
	return pgx.CollectRows(rows, scanRestaurant)
}

// SearchByLocation returns restaurants whose location contains the query,
// case-insensitively.
func (r *RestaurantRepository) SearchByLocation(ctx context.Context, location string) ([]restaurant.Restaurant, error) {
	rows, err := r.pool.Query(ctx, searchRestaurantsByLocationSQL, location)
	if err != nil {
		return nil, fmt.Errorf("searching restaurants by location %q: %w", location, err)
	}
	return pgx.CollectRows(rows, scanRestaurant)
}

// UpdateProfile applies the non-nil fields of upd to the restaurant row.
func (r *RestaurantRepository) UpdateProfile(ctx context.Context, id int64, upd restaurant.ProfileUpdate) error {
	tag, err := r.pool.Exec(ctx, updateRestaurantProfileSQL,
		id, upd.Name, upd.Location, upd.Description, upd.ContactInfo, upd.Images, upd.Timings,
	)
	if err != nil {
		return fmt.Errorf("updating profile of restaurant %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return restaurant.ErrNotFound
	}
	return nil
}

// Delete removes a restaurant account and, via cascading constraints, its
// dishes and favorites.
func (r *RestaurantRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteRestaurantSQL, id)
	if err != nil {
		return fmt.Errorf("deleting restaurant %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return restaurant.ErrNotFound
	}
	return nil
}

func scanRestaurant(row pgx.CollectableRow) (restaurant.Restaurant, error) {
	var rest restaurant.Restaurant
	err := row.Scan(
		&rest.ID, &rest.Name, &rest.Email, &rest.PasswordHash, &rest.Location,
		&rest.Description, &rest.ContactInfo, &rest.Images, &rest.Timings, &rest.CreatedAt,
	)
	return rest, err
}
