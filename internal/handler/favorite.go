package handler

import (
	"net/http"

	"github.com/feastly/feastly/internal/auth"
)

type favoriteAddRequest struct {
	CustomerID   int64 `json:"customer_id"`
	RestaurantID int64 `json:"restaurant_id"`
}

// FavoriteAdd marks a restaurant as a favorite. Adding an existing favorite
// is a no-op.
func (h *Handler) FavoriteAdd(w http.ResponseWriter, r *http.Request) {
	var req favoriteAddRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.authorizeID(w, r, auth.KindCustomer, req.CustomerID) {
		return
	}

	if err := h.favorites.Add(r.Context(), req.CustomerID, req.RestaurantID); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "Added to favorites"})
}

// FavoriteList returns the customer's favorite restaurants.
func (h *Handler) FavoriteList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customer_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if !h.authorizeID(w, r, auth.KindCustomer, id) {
		return
	}

	rs, err := h.favorites.ListByCustomer(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRestaurantResponses(rs))
}

// FavoriteRemove unmarks a favorite restaurant.
func (h *Handler) FavoriteRemove(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customer_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	restaurantID, err := pathID(r, "restaurant_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}
	if !h.authorizeID(w, r, auth.KindCustomer, customerID) {
		return
	}

	if err := h.favorites.Remove(r.Context(), customerID, restaurantID); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Removed from favorites"})
}
