package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feastly/feastly/internal/domain/customer"
)

const (
	createCustomerSQL = `INSERT INTO customers (name, email, password_hash)
	VALUES ($1, $2, $3) RETURNING id`

	getCustomerByIDSQL = `SELECT id, name, email, password_hash, profile_picture, country, state, created_at
	FROM customers WHERE id = $1`

	getCustomerByEmailSQL = `SELECT id, name, email, password_hash, profile_picture, country, state, created_at
	FROM customers WHERE email = $1`

	updateCustomerProfileSQL = `UPDATE customers SET
		name = COALESCE($2, name),
		profile_picture = COALESCE($3, profile_picture),
		country = COALESCE($4, country),
		state = COALESCE($5, state)
	WHERE id = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts a new customer account. Returns customer.ErrDuplicateEmail
// when the email is already registered.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, createCustomerSQL, c.Name, c.Email, c.PasswordHash).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, customer.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("creating customer %q: %w", c.Email, err)
	}
	return id, nil
}

// GetByID returns a single customer by id.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	return r.get(ctx, getCustomerByIDSQL, id)
}

// GetByEmail returns a single customer by email.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.get(ctx, getCustomerByEmailSQL, email)
}

func (r *CustomerRepository) get(ctx context.Context, sql string, arg any) (*customer.Customer, error) {
	var c customer.Customer
	err := r.pool.QueryRow(ctx, sql, arg).Scan(
		&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.ProfilePicture, &c.Country, &c.State, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer: %w", err)
	}
	return &c, nil
}

// UpdateProfile applies the non-nil fields of upd to the customer row.
func (r *CustomerRepository) UpdateProfile(ctx context.Context, id int64, upd customer.ProfileUpdate) error {
	tag, err := r.pool.Exec(ctx, updateCustomerProfileSQL,
		id, upd.Name, upd.ProfilePicture, upd.Country, upd.State,
	)
	if err != nil {
		return fmt.Errorf("updating profile of customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}
