package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/feastly/feastly/internal/auth"
	"github.com/feastly/feastly/internal/domain/order"
)

type orderLineResponse struct {
	DishID    int64   `json:"dish_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type orderResponse struct {
	ID           string              `json:"id"`
	CustomerID   int64               `json:"customer_id"`
	RestaurantID int64               `json:"restaurant_id"`
	Status       string              `json:"status"`
	Total        float64             `json:"total"`
	Items        []orderLineResponse `json:"items"`
	CreatedAt    time.Time           `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
		Status:       string(o.Status),
		Total:        o.Total.InexactFloat64(),
		Items:        make([]orderLineResponse, len(o.Lines)),
		CreatedAt:    o.CreatedAt,
	}
	for i, l := range o.Lines {
		resp.Items[i] = orderLineResponse{
			DishID:    l.DishID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.InexactFloat64(),
			Subtotal:  l.Subtotal().InexactFloat64(),
		}
	}
	return resp
}

type placeOrderRequest struct {
	CustomerID   int64  `json:"customer_id"`
	RestaurantID int64  `json:"restaurant_id"`
	Status       string `json:"status"`
}

// PlaceOrder commits the customer's current cart as a new order. The order
// contents always come from the server-side cart, never from the request
// body.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.authorizeID(w, r, auth.KindCustomer, req.CustomerID) {
		return
	}

	status := order.StatusNew
	if req.Status != "" {
		parsed, err := order.ParseStatus(req.Status)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	}

	o, err := h.orderSvc.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		CustomerID:   req.CustomerID,
		RestaurantID: req.RestaurantID,
		Status:       status,
	})
	if err != nil {
		h.respondOrderError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderResponse(o))
}

// respondOrderError maps order placement failures onto HTTP statuses:
// validation problems are the client's fault, infrastructure problems are
// ours.
func (h *Handler) respondOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		qtyErr   *order.InvalidQuantityError
		priceErr *order.InvalidPriceError
	)
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "cart is empty")
	case errors.As(err, &qtyErr):
		respondError(w, http.StatusBadRequest, qtyErr.Error())
	case errors.As(err, &priceErr):
		respondError(w, http.StatusBadRequest, priceErr.Error())
	default:
		h.respondDomainError(w, r, err)
	}
}

// OrderGet returns a single order. Only the ordering customer or the
// receiving restaurant may read it.
func (h *Handler) OrderGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.tokens.ParseBearer(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	o, err := h.orders.GetByID(r.Context(), r.PathValue("order_id"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	if !orderVisibleTo(o, p) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func orderVisibleTo(o *order.Order, p *auth.Principal) bool {
	switch p.Kind {
	case auth.KindCustomer:
		return o.CustomerID == p.ID
	case auth.KindRestaurant:
		return o.RestaurantID == p.ID
	}
	return false
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// OrderStatusUpdate moves an order along its lifecycle. Only the receiving
// restaurant may change status, except that the ordering customer may cancel.
func (h *Handler) OrderStatusUpdate(w http.ResponseWriter, r *http.Request) {
	p, err := h.tokens.ParseBearer(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	next, err := order.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	orderID := r.PathValue("order_id")
	o, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	allowed := (p.Kind == auth.KindRestaurant && o.RestaurantID == p.ID) ||
		(p.Kind == auth.KindCustomer && o.CustomerID == p.ID && next == order.StatusCancelled)
	if !allowed {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.orderSvc.UpdateStatus(r.Context(), orderID, next); err != nil {
		var transErr *order.InvalidTransitionError
		if errors.As(err, &transErr) {
			respondError(w, http.StatusConflict, transErr.Error())
			return
		}
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
}

// OrderCustomer returns the ordering customer's contact details for an
// order. Restricted to the receiving restaurant.
func (h *Handler) OrderCustomer(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, auth.KindRestaurant)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	o, err := h.orders.GetByID(r.Context(), r.PathValue("order_id"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	if o.RestaurantID != p.ID {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	c, err := h.customers.GetByID(r.Context(), o.CustomerID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCustomerResponse(c))
}

type historyEntryResponse struct {
	OrderID        string    `json:"order_id"`
	RestaurantName string    `json:"restaurant_name"`
	Status         string    `json:"status"`
	Total          float64   `json:"total"`
	Items          string    `json:"items"`
	CreatedAt      time.Time `json:"created_at"`
}

// CustomerOrders returns the customer's order history, newest first.
func (h *Handler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customer_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if !h.authorizeID(w, r, auth.KindCustomer, id) {
		return
	}

	entries, err := h.orders.HistoryByCustomer(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	resp := make([]historyEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = historyEntryResponse{
			OrderID:        e.OrderID,
			RestaurantName: e.RestaurantName,
			Status:         string(e.Status),
			Total:          e.Total.InexactFloat64(),
			Items:          e.Items,
			CreatedAt:      e.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

type restaurantOrderResponse struct {
	OrderID      string    `json:"order_id"`
	CustomerID   int64     `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Status       string    `json:"status"`
	Total        float64   `json:"total"`
	Dishes       string    `json:"dishes"`
	CreatedAt    time.Time `json:"created_at"`
}

// RestaurantOrders returns the restaurant's incoming orders, optionally
// filtered by the status query parameter.
func (h *Handler) RestaurantOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "restaurant_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}
	if !h.authorizeID(w, r, auth.KindRestaurant, id) {
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" {
		if _, err := order.ParseStatus(status); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	entries, err := h.orders.ListByRestaurant(r.Context(), id, status)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	resp := make([]restaurantOrderResponse, len(entries))
	for i, e := range entries {
		resp[i] = restaurantOrderResponse{
			OrderID:      e.OrderID,
			CustomerID:   e.CustomerID,
			CustomerName: e.CustomerName,
			Status:       string(e.Status),
			Total:        e.Total.InexactFloat64(),
			Dishes:       e.DishNames,
			CreatedAt:    e.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
