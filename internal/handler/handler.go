// Package handler implements the REST API surface: request decoding, auth
// checks, delegation to domain services and repositories, and response
// encoding. Error bodies are always {"code": ..., "message": ...}.
package handler

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/feastly/feastly/internal/auth"
	"github.com/feastly/feastly/internal/domain/cart"
	"github.com/feastly/feastly/internal/domain/customer"
	"github.com/feastly/feastly/internal/domain/dish"
	"github.com/feastly/feastly/internal/domain/favorite"
	"github.com/feastly/feastly/internal/domain/order"
	"github.com/feastly/feastly/internal/domain/restaurant"
)

// Handler serves the REST API, delegating business logic to the injected
// domain dependencies.
type Handler struct {
	customers   customer.Repository
	restaurants restaurant.Repository
	dishes      dish.Repository
	carts       cart.Repository
	favorites   favorite.Repository
	orders      order.Repository
	orderSvc    *order.Service
	tokens      *auth.Tokens
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	customers customer.Repository,
	restaurants restaurant.Repository,
	dishes dish.Repository,
	carts cart.Repository,
	favorites favorite.Repository,
	orders order.Repository,
	orderSvc *order.Service,
	tokens *auth.Tokens,
) *Handler {
	return &Handler{
		customers:   customers,
		restaurants: restaurants,
		dishes:      dishes,
		carts:       carts,
		favorites:   favorites,
		orders:      orders,
		orderSvc:    orderSvc,
		tokens:      tokens,
	}
}

// Routes registers every API route on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Customer account.
	mux.HandleFunc("POST /api/customer/signup", h.CustomerSignup)
	mux.HandleFunc("POST /api/customer/login", h.CustomerLogin)
	mux.HandleFunc("POST /api/customer/logout", h.Logout)
	mux.HandleFunc("GET /api/customer/profile/{customer_id}", h.CustomerProfile)
	mux.HandleFunc("PUT /api/customer/profile/{customer_id}", h.CustomerProfileUpdate)
	mux.HandleFunc("GET /api/customer/orders/{customer_id}", h.CustomerOrders)

	// Favorites.
	mux.HandleFunc("POST /api/customer/favorites", h.FavoriteAdd)
	mux.HandleFunc("GET /api/customer/favorites/{customer_id}", h.FavoriteList)
	mux.HandleFunc("DELETE /api/customer/favorites/{customer_id}/{restaurant_id}", h.FavoriteRemove)

	// Cart.
	mux.HandleFunc("POST /api/customer/cart", h.CartAdd)
	mux.HandleFunc("GET /api/customer/cart/{customer_id}", h.CartView)
	mux.HandleFunc("PUT /api/customer/cart/{cart_id}", h.CartUpdateQuantity)
	mux.HandleFunc("DELETE /api/customer/cart/{cart_id}", h.CartRemove)
	mux.HandleFunc("DELETE /api/customer/cart/clear/{customer_id}", h.CartClear)

	// Restaurant account.
	mux.HandleFunc("POST /api/restaurant/signup", h.RestaurantSignup)
	mux.HandleFunc("POST /api/restaurant/login", h.RestaurantLogin)
	mux.HandleFunc("POST /api/restaurant/logout", h.Logout)
	mux.HandleFunc("GET /api/restaurant/profile/{restaurant_id}", h.RestaurantProfile)
	mux.HandleFunc("PUT /api/restaurant/profile/{restaurant_id}", h.RestaurantProfileUpdate)
	mux.HandleFunc("DELETE /api/restaurant/profile/{restaurant_id}", h.RestaurantDelete)
	mux.HandleFunc("GET /api/restaurant/{restaurant_id}", h.RestaurantDetail)
	mux.HandleFunc("GET /api/restaurant/orders/{restaurant_id}", h.RestaurantOrders)

	// Dish management and catalog.
	mux.HandleFunc("POST /api/restaurant/dishes", h.DishCreate)
	mux.HandleFunc("GET /api/restaurant/dishes/{restaurant_id}", h.DishesByRestaurant)
	mux.HandleFunc("PUT /api/restaurant/dishes/{dish_id}", h.DishUpdate)
	mux.HandleFunc("DELETE /api/restaurant/dishes/{dish_id}", h.DishDelete)
	mux.HandleFunc("GET /api/dishes", h.DishList)
	mux.HandleFunc("GET /api/dishes/search", h.DishSearch)
	mux.HandleFunc("GET /api/dishes/category", h.DishesByCategory)
	mux.HandleFunc("GET /api/dish/{dish_id}", h.DishGet)

	// Restaurant discovery.
	mux.HandleFunc("GET /api/restaurants", h.RestaurantList)
	mux.HandleFunc("GET /api/restaurants/search", h.RestaurantSearch)
	mux.HandleFunc("GET /api/restaurants/location", h.RestaurantsByLocation)

	// Orders.
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders/{order_id}", h.OrderGet)
	mux.HandleFunc("PUT /api/orders/{order_id}/status", h.OrderStatusUpdate)
	mux.HandleFunc("GET /api/orders/{order_id}/customer", h.OrderCustomer)

	return mux
}

// errorBody is the JSON error envelope for all error responses.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Code: status, Message: message})
}

// respondDomainError maps domain errors onto HTTP statuses. Unexpected
// errors are logged and hidden behind a generic 500.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, customer.ErrNotFound),
		errors.Is(err, restaurant.ErrNotFound),
		errors.Is(err, dish.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, favorite.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, customer.ErrDuplicateEmail),
		errors.Is(err, restaurant.ErrDuplicateEmail):
		respondError(w, http.StatusBadRequest, "email already exists")

	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")

	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// validEmail accepts a bare RFC 5322 address. Display names ("A <a@b.c>")
// are rejected so the stored value is always just the address.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// principal extracts and verifies the bearer token, requiring the given kind.
func (h *Handler) principal(r *http.Request, kind string) (*auth.Principal, error) {
	p, err := h.tokens.ParseBearer(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	if p.Kind != kind {
		return nil, auth.ErrInvalidToken
	}
	return p, nil
}

// authorizeID requires a valid token of the given kind whose subject matches
// id, so callers can only act on their own resources.
func (h *Handler) authorizeID(w http.ResponseWriter, r *http.Request, kind string, id int64) bool {
	p, err := h.principal(r, kind)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if p.ID != id {
		respondError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

// Logout exists for client symmetry: sessions are stateless bearer tokens,
// so the server has nothing to invalidate.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}
