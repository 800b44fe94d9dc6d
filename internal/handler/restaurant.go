package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/feastly/feastly/internal/auth"
	"github.com/feastly/feastly/internal/domain/restaurant"
)

type restaurantResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	ContactInfo string `json:"contact_info,omitempty"`
	Images      string `json:"images,omitempty"`
	Timings     string `json:"timings,omitempty"`
}

func toRestaurantResponse(rst *restaurant.Restaurant) restaurantResponse {
	return restaurantResponse{
		ID:          rst.ID,
		Name:        rst.Name,
		Email:       rst.Email,
		Location:    rst.Location,
		Description: rst.Description,
		ContactInfo: rst.ContactInfo,
		Images:      rst.Images,
		Timings:     rst.Timings,
	}
}

func toRestaurantResponses(rs []restaurant.Restaurant) []restaurantResponse {
	out := make([]restaurantResponse, len(rs))
	for i := range rs {
		out[i] = toRestaurantResponse(&rs[i])
		out[i].Email = "" // listings never expose account emails
	}
	return out
}

// RestaurantSignup registers a new restaurant account and issues a session
// token.
func (h *Handler) RestaurantSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Location string `json:"location"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if !validEmail(req.Email) {
		respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	id, err := h.restaurants.Create(r.Context(), &restaurant.Restaurant{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Location:     req.Location,
	})
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(auth.Principal{ID: id, Kind: auth.KindRestaurant})
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse{
		Message: "Signup successful",
		ID:      id,
		Token:   token,
	})
}

// RestaurantLogin verifies credentials and issues a session token.
func (h *Handler) RestaurantLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rst, err := h.restaurants.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, restaurant.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.respondDomainError(w, r, err)
		return
	}
	if err := auth.CheckPassword(rst.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(auth.Principal{ID: rst.ID, Kind: auth.KindRestaurant})
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{
		Message: "Login successful",
		ID:      rst.ID,
		Token:   token,
	})
}

// RestaurantProfile returns the authenticated restaurant's own profile.
func (h *Handler) RestaurantProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "restaurant_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}
	if !h.authorizeID(w, r, auth.KindRestaurant, id) {
		return
	}

	rst, err := h.restaurants.GetByID(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRestaurantResponse(rst))
}

type restaurantProfileUpdateRequest struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	ContactInfo *string `json:"contact_info"`
	Images      *string `json:"images"`
	Timings     *string `json:"timings"`
}

// RestaurantProfileUpdate applies a partial update to the restaurant's
// listing details.
func (h *Handler) RestaurantProfileUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "restaurant_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}
	if !h.authorizeID(w, r, auth.KindRestaurant, id) {
		return
	}

	var req restaurantProfileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	upd := restaurant.ProfileUpdate{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		ContactInfo: req.ContactInfo,
		Images:      req.Images,
		Timings:     req.Timings,
	}
	if upd.Empty() {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.restaurants.UpdateProfile(r.Context(), id, upd); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
}

// RestaurantDelete removes the restaurant account and everything cascading
// from it.
func (h *Handler) RestaurantDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "restaurant_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}
	if !h.authorizeID(w, r, auth.KindRestaurant, id) {
		return
	}

	if err := h.restaurants.Delete(r.Context(), id); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

// RestaurantDetail is the public restaurant page: listing details plus the
// full menu.
func (h *Handler) RestaurantDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "restaurant_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	rst, err := h.restaurants.GetByID(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	dishes, err := h.dishes.ListByRestaurant(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	resp := toRestaurantResponse(rst)
	resp.Email = ""
	respondJSON(w, http.StatusOK, map[string]any{
		"restaurant": resp,
		"dishes":     toDishResponses(dishes),
	})
}

// RestaurantList returns all restaurants.
func (h *Handler) RestaurantList(w http.ResponseWriter, r *http.Request) {
	rs, err := h.restaurants.List(r.Context())
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRestaurantResponses(rs))
}

// RestaurantSearch finds restaurants by name substring.
func (h *Handler) RestaurantSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	rs, err := h.restaurants.SearchByName(r.Context(), query)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRestaurantResponses(rs))
}

// RestaurantsByLocation finds restaurants by location substring.
func (h *Handler) RestaurantsByLocation(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		respondError(w, http.StatusBadRequest, "location parameter is required")
		return
	}

	rs, err := h.restaurants.SearchByLocation(r.Context(), location)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRestaurantResponses(rs))
}
