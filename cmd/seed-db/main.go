// Command seed-db loads demo accounts, restaurants, and menus into the
// database so a fresh deployment has something to browse.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/feastly/feastly/internal/auth"
	"github.com/feastly/feastly/internal/domain/customer"
	"github.com/feastly/feastly/internal/domain/dish"
	"github.com/feastly/feastly/internal/domain/restaurant"
	"github.com/feastly/feastly/internal/repository"
)

type seedDish struct {
	name        string
	ingredients string
	price       string
	category    string
	description string
}

type seedRestaurant struct {
	name     string
	email    string
	location string
	timings  string
	dishes   []seedDish
}

var seedData = []seedRestaurant{
	{
		name:     "Pasta Palace",
		email:    "hello@pastapalace.example",
		location: "Downtown",
		timings:  "11:00-22:00",
		dishes: []seedDish{
			{name: "Margherita Pizza", ingredients: "tomato, mozzarella, basil", price: "9.50", category: "Pizza", description: "Classic Neapolitan pizza"},
			{name: "Spaghetti Carbonara", ingredients: "egg, guanciale, pecorino", price: "12.00", category: "Pasta", description: "Roman classic"},
			{name: "Tiramisu", ingredients: "mascarpone, espresso, savoiardi", price: "6.25", category: "Dessert", description: "House-made tiramisu"},
		},
	},
	{
		name:     "Burger Barn",
		email:    "orders@burgerbarn.example",
		location: "Riverside",
		timings:  "10:00-23:00",
		dishes: []seedDish{
			{name: "Classic Cheeseburger", ingredients: "beef, cheddar, pickles", price: "8.75", category: "Burgers", description: "Quarter pounder with cheese"},
			{name: "Sweet Potato Fries", ingredients: "sweet potato, sea salt", price: "3.25", category: "Sides", description: "Crispy fries"},
			{name: "Vanilla Shake", ingredients: "milk, vanilla, ice cream", price: "4.50", category: "Drinks", description: "Thick vanilla milkshake"},
		},
	},
	{
		name:     "Wok This Way",
		email:    "kitchen@wokthisway.example",
		location: "Chinatown",
		timings:  "12:00-21:30",
		dishes: []seedDish{
			{name: "Kung Pao Chicken", ingredients: "chicken, peanuts, chili", price: "11.00", category: "Mains", description: "Sichuan stir fry"},
			{name: "Vegetable Spring Rolls", ingredients: "cabbage, carrot, glass noodles", price: "4.75", category: "Starters", description: "Six pieces, fried"},
		},
	},
}

func main() {
	var (
		databaseURL string
		password    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&password, "password", "demo-password", "password for all seeded accounts")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, password); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, password string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash seed password")
	}

	if err := seedRestaurants(ctx, pool, hash); err != nil {
		return errors.Wrap(err, "seed restaurants")
	}

	if err := seedCustomer(ctx, pool, hash); err != nil {
		return errors.Wrap(err, "seed customer")
	}

	return nil
}

func seedRestaurants(ctx context.Context, pool *pgxpool.Pool, hash string) error {
	restaurants := repository.NewRestaurantRepository(pool)
	dishes := repository.NewDishRepository(pool)

	for _, sr := range seedData {
		id, err := restaurants.Create(ctx, &restaurant.Restaurant{
			Name:         sr.name,
			Email:        sr.email,
			PasswordHash: hash,
			Location:     sr.location,
			Timings:      sr.timings,
		})
		if err != nil {
			if errors.Is(err, restaurant.ErrDuplicateEmail) {
				slog.Info("restaurant already seeded", slog.String("name", sr.name))
				continue
			}
			return errors.Wrapf(err, "create restaurant %s", sr.name)
		}

		menu := lo.Map(sr.dishes, func(sd seedDish, _ int) dish.Dish {
			return dish.Dish{
				RestaurantID: id,
				Name:         sd.name,
				Ingredients:  sd.ingredients,
				Price:        decimal.RequireFromString(sd.price),
				Category:     sd.category,
				Description:  sd.description,
			}
		})
		for i := range menu {
			if _, err := dishes.Create(ctx, &menu[i]); err != nil {
				return errors.Wrapf(err, "create dish %s", menu[i].Name)
			}
		}

		slog.Info("seeded restaurant",
			slog.String("name", sr.name),
			slog.Int64("id", id),
			slog.Int("dishes", len(menu)),
		)
	}

	return nil
}

func seedCustomer(ctx context.Context, pool *pgxpool.Pool, hash string) error {
	customers := repository.NewCustomerRepository(pool)

	id, err := customers.Create(ctx, &customer.Customer{
		Name:         "Demo Customer",
		Email:        "demo@feastly.example",
		PasswordHash: hash,
		Country:      "US",
		State:        "CA",
	})
	if err != nil {
		if errors.Is(err, customer.ErrDuplicateEmail) {
			slog.Info("customer already seeded")
			return nil
		}
		return errors.Wrap(err, "create demo customer")
	}

	slog.Info("seeded customer", slog.Int64("id", id))
	return nil
}
