package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastly/feastly/internal/auth"
	"github.com/feastly/feastly/internal/domain/cart"
	"github.com/feastly/feastly/internal/domain/customer"
	"github.com/feastly/feastly/internal/domain/dish"
	"github.com/feastly/feastly/internal/domain/favorite"
	"github.com/feastly/feastly/internal/domain/order"
	"github.com/feastly/feastly/internal/domain/restaurant"
)

// --- In-memory fakes ---

type fakeCustomers struct {
	nextID int64
	byID   map[int64]*customer.Customer
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{byID: make(map[int64]*customer.Customer)}
}

func (f *fakeCustomers) Create(_ context.Context, c *customer.Customer) (int64, error) {
	for _, existing := range f.byID {
		if existing.Email == c.Email {
			return 0, customer.ErrDuplicateEmail
		}
	}
	f.nextID++
	cp := *c
	cp.ID = f.nextID
	f.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeCustomers) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return c, nil
}

func (f *fakeCustomers) GetByEmail(_ context.Context, email string) (*customer.Customer, error) {
	for _, c := range f.byID {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, customer.ErrNotFound
}

func (f *fakeCustomers) UpdateProfile(_ context.Context, id int64, upd customer.ProfileUpdate) error {
	c, ok := f.byID[id]
	if !ok {
		return customer.ErrNotFound
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Country != nil {
		c.Country = *upd.Country
	}
	return nil
}

type fakeRestaurants struct {
	byID map[int64]*restaurant.Restaurant
}

func (f *fakeRestaurants) Create(_ context.Context, _ *restaurant.Restaurant) (int64, error) {
	return 0, nil
}

func (f *fakeRestaurants) GetByID(_ context.Context, id int64) (*restaurant.Restaurant, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, restaurant.ErrNotFound
	}
	return r, nil
}

func (f *fakeRestaurants) GetByEmail(_ context.Context, _ string) (*restaurant.Restaurant, error) {
	return nil, restaurant.ErrNotFound
}

func (f *fakeRestaurants) List(_ context.Context) ([]restaurant.Restaurant, error) {
	var out []restaurant.Restaurant
	for _, r := range f.byID {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRestaurants) SearchByName(_ context.Context, _ string) ([]restaurant.Restaurant, error) {
	return nil, nil
}

func (f *fakeRestaurants) SearchByLocation(_ context.Context, _ string) ([]restaurant.Restaurant, error) {
	return nil, nil
}

func (f *fakeRestaurants) UpdateProfile(_ context.Context, _ int64, _ restaurant.ProfileUpdate) error {
	return nil
}

func (f *fakeRestaurants) Delete(_ context.Context, _ int64) error { return nil }

type fakeDishes struct {
	byID map[int64]*dish.Dish
}

func (f *fakeDishes) Create(_ context.Context, _ *dish.Dish) (int64, error) { return 0, nil }

func (f *fakeDishes) GetByID(_ context.Context, id int64) (*dish.Dish, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, dish.ErrNotFound
	}
	return d, nil
}

func (f *fakeDishes) List(_ context.Context) ([]dish.Dish, error) { return nil, nil }

func (f *fakeDishes) ListByRestaurant(_ context.Context, _ int64) ([]dish.Dish, error) {
	return nil, nil
}

func (f *fakeDishes) SearchByName(_ context.Context, _ string) ([]dish.Dish, error) {
	return nil, nil
}

func (f *fakeDishes) ListByCategory(_ context.Context, _ string) ([]dish.Dish, error) {
	return nil, nil
}

func (f *fakeDishes) Update(_ context.Context, _ int64, _ dish.Update) error { return nil }

func (f *fakeDishes) Delete(_ context.Context, _ int64) error { return nil }

type fakeCarts struct {
	lines []cart.Line
}

func (f *fakeCarts) Snapshot(_ context.Context, customerID int64) ([]cart.Line, error) {
	var out []cart.Line
	for _, l := range f.lines {
		if l.CustomerID == customerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeCarts) AddItem(_ context.Context, customerID, dishID int64, quantity int) (int64, error) {
	id := int64(len(f.lines) + 1)
	f.lines = append(f.lines, cart.Line{ID: id, CustomerID: customerID, DishID: dishID, Quantity: quantity})
	return id, nil
}

func (f *fakeCarts) UpdateQuantity(_ context.Context, _ int64, _ int) error { return nil }

func (f *fakeCarts) RemoveItem(_ context.Context, _ int64) error { return nil }

func (f *fakeCarts) Clear(_ context.Context, customerID int64) (int64, error) {
	var kept []cart.Line
	var removed int64
	for _, l := range f.lines {
		if l.CustomerID == customerID {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	f.lines = kept
	return removed, nil
}

type fakeFavorites struct{}

func (fakeFavorites) Add(_ context.Context, _, _ int64) error { return nil }

func (fakeFavorites) ListByCustomer(_ context.Context, _ int64) ([]restaurant.Restaurant, error) {
	return nil, nil
}

func (fakeFavorites) Remove(_ context.Context, _, _ int64) error { return favorite.ErrNotFound }

type fakeOrders struct {
	byID map[string]*order.Order
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) HistoryByCustomer(_ context.Context, _ int64) ([]order.HistoryEntry, error) {
	return nil, nil
}

func (f *fakeOrders) ListByRestaurant(_ context.Context, _ int64, _ string) ([]order.RestaurantEntry, error) {
	return nil, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id string, status order.Status) error {
	o, ok := f.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

// fakeStore applies the transaction against the fake cart directly.
type fakeStore struct {
	carts  *fakeCarts
	orders *fakeOrders
}

type fakeTx struct{ store *fakeStore }

func (s *fakeStore) InTx(_ context.Context, fn func(tx order.Tx) error) error {
	return fn(&fakeTx{store: s})
}

func (t *fakeTx) InsertOrder(_ context.Context, o *order.Order) error {
	if t.store.orders.byID == nil {
		t.store.orders.byID = make(map[string]*order.Order)
	}
	t.store.orders.byID[o.ID] = o
	return nil
}

func (t *fakeTx) InsertLines(_ context.Context, _ string, _ []order.Line) error { return nil }

func (t *fakeTx) ClearCart(ctx context.Context, customerID int64) (int64, error) {
	return t.store.carts.Clear(ctx, customerID)
}

// --- Test fixture ---

type fixture struct {
	h         *Handler
	mux       *http.ServeMux
	customers *fakeCustomers
	carts     *fakeCarts
	orders    *fakeOrders
	tokens    *auth.Tokens
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	customers := newFakeCustomers()
	carts := &fakeCarts{}
	orders := &fakeOrders{byID: make(map[string]*order.Order)}
	store := &fakeStore{carts: carts, orders: orders}
	tokens := auth.NewTokens("test-secret", time.Hour)

	h := NewHandler(
		customers,
		&fakeRestaurants{byID: make(map[int64]*restaurant.Restaurant)},
		&fakeDishes{byID: make(map[int64]*dish.Dish)},
		carts,
		fakeFavorites{},
		orders,
		order.NewService(carts, store, orders),
		tokens,
	)

	return &fixture{
		h:         h,
		mux:       h.Routes(),
		customers: customers,
		carts:     carts,
		orders:    orders,
		tokens:    tokens,
	}
}

func (f *fixture) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) customerToken(t *testing.T, id int64) string {
	t.Helper()
	token, err := f.tokens.Issue(auth.Principal{ID: id, Kind: auth.KindCustomer})
	require.NoError(t, err)
	return token
}

func (f *fixture) restaurantToken(t *testing.T, id int64) string {
	t.Helper()
	token, err := f.tokens.Issue(auth.Principal{ID: id, Kind: auth.KindRestaurant})
	require.NoError(t, err)
	return token
}

// --- Tests ---

func TestCustomerSignup(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/customer/signup", "",
		`{"name":"Ada","email":"ada@example.com","password":"hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)
	assert.NotEmpty(t, resp.Token)
}

func TestCustomerSignup_DuplicateEmail(t *testing.T) {
	f := newFixture(t)

	body := `{"name":"Ada","email":"ada@example.com","password":"hunter2"}`
	rec := f.request(t, http.MethodPost, "/api/customer/signup", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/customer/signup", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already exists")
}

func TestCustomerSignup_MissingFields(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/customer/signup", "",
		`{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_InvalidEmail(t *testing.T) {
	f := newFixture(t)

	for _, email := range []string{"not-an-email", "a@", "@b.com", "Ada <ada@example.com>", "a b@example.com"} {
		body := `{"name":"Ada","email":"` + email + `","password":"hunter2"}`

		rec := f.request(t, http.MethodPost, "/api/customer/signup", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "customer signup with %q", email)
		assert.Contains(t, rec.Body.String(), "invalid email address")

		rec = f.request(t, http.MethodPost, "/api/restaurant/signup", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "restaurant signup with %q", email)
	}
}

func TestCustomerLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/customer/signup", "",
		`{"name":"Ada","email":"ada@example.com","password":"hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/customer/login", "",
		`{"email":"ada@example.com","password":"hunter2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/customer/login", "",
		`{"email":"ada@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/customer/login", "",
		`{"email":"nobody@example.com","password":"hunter2"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomerProfile_AuthRequired(t *testing.T) {
	f := newFixture(t)
	f.customers.byID[1] = &customer.Customer{ID: 1, Name: "Ada", Email: "ada@example.com"}

	rec := f.request(t, http.MethodGet, "/api/customer/profile/1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A different customer's token is rejected.
	rec = f.request(t, http.MethodGet, "/api/customer/profile/1", f.customerToken(t, 2), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A restaurant token never grants customer access.
	rec = f.request(t, http.MethodGet, "/api/customer/profile/1", f.restaurantToken(t, 1), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/customer/profile/1", f.customerToken(t, 1), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	f.carts.lines = []cart.Line{
		{ID: 1, CustomerID: 1, DishID: 10, Quantity: 2, UnitPrice: decimal.RequireFromString("9.50")},
		{ID: 2, CustomerID: 1, DishID: 11, Quantity: 1, UnitPrice: decimal.RequireFromString("3.25")},
	}

	rec := f.request(t, http.MethodPost, "/api/orders", f.customerToken(t, 1),
		`{"customer_id":1,"restaurant_id":7}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp orderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "New", resp.Status)
	assert.InDelta(t, 22.25, resp.Total, 1e-9)
	assert.Len(t, resp.Items, 2)

	// The cart is cleared by the commit.
	lines, err := f.carts.Snapshot(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/orders", f.customerToken(t, 1),
		`{"customer_id":1,"restaurant_id":7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cart is empty")
}

func TestPlaceOrder_ForeignCustomer(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/orders", f.customerToken(t, 2),
		`{"customer_id":1,"restaurant_id":7}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrderStatusUpdate(t *testing.T) {
	f := newFixture(t)
	f.orders.byID["o1"] = &order.Order{ID: "o1", CustomerID: 1, RestaurantID: 7, Status: order.StatusNew}

	// Restaurant advances the lifecycle.
	rec := f.request(t, http.MethodPut, "/api/orders/o1/status", f.restaurantToken(t, 7),
		`{"status":"Order Received"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, order.StatusOrderReceived, f.orders.byID["o1"].Status)

	// Skipping ahead is a conflict.
	rec = f.request(t, http.MethodPut, "/api/orders/o1/status", f.restaurantToken(t, 7),
		`{"status":"Delivered"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown status string is a bad request.
	rec = f.request(t, http.MethodPut, "/api/orders/o1/status", f.restaurantToken(t, 7),
		`{"status":"Vanished"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A customer may only cancel their own order.
	rec = f.request(t, http.MethodPut, "/api/orders/o1/status", f.customerToken(t, 1),
		`{"status":"Preparing"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.request(t, http.MethodPut, "/api/orders/o1/status", f.customerToken(t, 1),
		`{"status":"Cancelled"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.StatusCancelled, f.orders.byID["o1"].Status)
}

func TestOrderGet_Visibility(t *testing.T) {
	f := newFixture(t)
	f.orders.byID["o1"] = &order.Order{
		ID: "o1", CustomerID: 1, RestaurantID: 7,
		Status: order.StatusNew, Total: decimal.RequireFromString("22.25"),
	}

	rec := f.request(t, http.MethodGet, "/api/orders/o1", f.customerToken(t, 1), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/orders/o1", f.restaurantToken(t, 7), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/orders/o1", f.customerToken(t, 2), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/orders/o1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/orders/missing", f.customerToken(t, 1), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t)
	token := f.customerToken(t, 1)

	rec := f.request(t, http.MethodPost, "/api/customer/cart", token,
		`{"customer_id":1,"dish_id":10,"quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.request(t, http.MethodPost, "/api/customer/cart", token,
		`{"customer_id":1,"dish_id":10,"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/customer/cart/1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodDelete, "/api/customer/cart/clear/1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"removed":1`)
}

func TestCartView_TotalSummedExactly(t *testing.T) {
	f := newFixture(t)

	// 0.10 + 0.20 accumulated in float64 yields 0.30000000000000004.
	f.carts.lines = []cart.Line{
		{ID: 1, CustomerID: 1, DishID: 10, Quantity: 1, UnitPrice: decimal.RequireFromString("0.10")},
		{ID: 2, CustomerID: 1, DishID: 11, Quantity: 1, UnitPrice: decimal.RequireFromString("0.20")},
	}

	rec := f.request(t, http.MethodGet, "/api/customer/cart/1", f.customerToken(t, 1), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0.3, resp.Total)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/customer/logout", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
