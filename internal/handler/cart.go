package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/feastly/feastly/internal/auth"
	"github.com/feastly/feastly/internal/domain/cart"
)

type cartLineResponse struct {
	ID           int64   `json:"id"`
	DishID       int64   `json:"dish_id"`
	DishName     string  `json:"dish_name"`
	Image        string  `json:"image,omitempty"`
	RestaurantID int64   `json:"restaurant_id"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Subtotal     float64 `json:"subtotal"`
}

type cartResponse struct {
	Items []cartLineResponse `json:"items"`
	Total float64            `json:"total"`
}

func toCartResponse(lines []cart.Line) cartResponse {
	resp := cartResponse{Items: make([]cartLineResponse, len(lines))}
	total := decimal.Zero
	for i, l := range lines {
		subtotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		resp.Items[i] = cartLineResponse{
			ID:           l.ID,
			DishID:       l.DishID,
			DishName:     l.DishName,
			Image:        l.Image,
			RestaurantID: l.RestaurantID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice.InexactFloat64(),
			Subtotal:     subtotal.InexactFloat64(),
		}
		total = total.Add(subtotal)
	}
	// Sum in decimal, convert once. Per-line float rounding must not leak
	// into the total.
	resp.Total = total.InexactFloat64()
	return resp
}

type cartAddRequest struct {
	CustomerID int64 `json:"customer_id"`
	DishID     int64 `json:"dish_id"`
	Quantity   int   `json:"quantity"`
}

// CartAdd puts a dish into the customer's cart.
func (h *Handler) CartAdd(w http.ResponseWriter, r *http.Request) {
	var req cartAddRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.authorizeID(w, r, auth.KindCustomer, req.CustomerID) {
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "quantity must be greater than 0")
		return
	}

	id, err := h.carts.AddItem(r.Context(), req.CustomerID, req.DishID, req.Quantity)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Added to cart",
		"id":      id,
	})
}

// CartView returns the customer's current cart with a running total.
func (h *Handler) CartView(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customer_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if !h.authorizeID(w, r, auth.KindCustomer, id) {
		return
	}

	lines, err := h.carts.Snapshot(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(lines))
}

// CartUpdateQuantity changes the quantity on a single cart line.
func (h *Handler) CartUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	if _, err := h.principal(r, auth.KindCustomer); err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := pathID(r, "cart_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cart line id")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "quantity must be greater than 0")
		return
	}

	if err := h.carts.UpdateQuantity(r.Context(), id, req.Quantity); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart updated"})
}

// CartRemove deletes a single cart line.
func (h *Handler) CartRemove(w http.ResponseWriter, r *http.Request) {
	if _, err := h.principal(r, auth.KindCustomer); err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := pathID(r, "cart_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cart line id")
		return
	}

	if err := h.carts.RemoveItem(r.Context(), id); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Removed from cart"})
}

// CartClear empties the customer's cart.
func (h *Handler) CartClear(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customer_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if !h.authorizeID(w, r, auth.KindCustomer, id) {
		return
	}

	removed, err := h.carts.Clear(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Cart cleared",
		"removed": removed,
	})
}
