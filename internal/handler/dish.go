package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/feastly/feastly/internal/auth"
	"github.com/feastly/feastly/internal/domain/dish"
)

type dishResponse struct {
	ID           int64   `json:"id"`
	RestaurantID int64   `json:"restaurant_id"`
	Name         string  `json:"name"`
	Ingredients  string  `json:"ingredients,omitempty"`
	Image        string  `json:"image,omitempty"`
	Price        float64 `json:"price"`
	Description  string  `json:"description,omitempty"`
	Category     string  `json:"category,omitempty"`
}

func toDishResponse(d *dish.Dish) dishResponse {
	return dishResponse{
		ID:           d.ID,
		RestaurantID: d.RestaurantID,
		Name:         d.Name,
		Ingredients:  d.Ingredients,
		Image:        d.Image,
		Price:        d.Price.InexactFloat64(),
		Description:  d.Description,
		Category:     d.Category,
	}
}

func toDishResponses(ds []dish.Dish) []dishResponse {
	out := make([]dishResponse, len(ds))
	for i := range ds {
		out[i] = toDishResponse(&ds[i])
	}
	return out
}

type dishCreateRequest struct {
	Name        string  `json:"name"`
	Ingredients string  `json:"ingredients"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// DishCreate adds a dish to the authenticated restaurant's menu.
func (h *Handler) DishCreate(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, auth.KindRestaurant)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req dishCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	d := &dish.Dish{
		RestaurantID: p.ID,
		Name:         req.Name,
		Ingredients:  req.Ingredients,
		Image:        req.Image,
		Price:        decimal.NewFromFloat(req.Price),
		Description:  req.Description,
		Category:     req.Category,
	}
	id, err := h.dishes.Create(r.Context(), d)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	d.ID = id

	respondJSON(w, http.StatusCreated, toDishResponse(d))
}

type dishUpdateRequest struct {
	Name        *string  `json:"name"`
	Ingredients *string  `json:"ingredients"`
	Image       *string  `json:"image"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
}

// DishUpdate applies a partial update to a dish owned by the authenticated
// restaurant.
func (h *Handler) DishUpdate(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, auth.KindRestaurant)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := pathID(r, "dish_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dish id")
		return
	}

	d, err := h.dishes.GetByID(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	if d.RestaurantID != p.ID {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req dishUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	upd := dish.Update{
		Name:        req.Name,
		Ingredients: req.Ingredients,
		Image:       req.Image,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Price != nil {
		if *req.Price < 0 {
			respondError(w, http.StatusBadRequest, "price must not be negative")
			return
		}
		price := decimal.NewFromFloat(*req.Price)
		upd.Price = &price
	}
	if upd.Empty() {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.dishes.Update(r.Context(), id, upd); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Dish updated"})
}

// DishDelete removes a dish owned by the authenticated restaurant.
func (h *Handler) DishDelete(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, auth.KindRestaurant)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := pathID(r, "dish_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dish id")
		return
	}

	d, err := h.dishes.GetByID(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	if d.RestaurantID != p.ID {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.dishes.Delete(r.Context(), id); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Dish deleted"})
}

// DishGet returns a single dish.
func (h *Handler) DishGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "dish_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dish id")
		return
	}

	d, err := h.dishes.GetByID(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDishResponse(d))
}

// DishList returns the full catalog across all restaurants.
func (h *Handler) DishList(w http.ResponseWriter, r *http.Request) {
	ds, err := h.dishes.List(r.Context())
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDishResponses(ds))
}

// DishesByRestaurant returns one restaurant's menu.
func (h *Handler) DishesByRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "restaurant_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	ds, err := h.dishes.ListByRestaurant(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDishResponses(ds))
}

// DishSearch finds dishes by name substring.
func (h *Handler) DishSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	ds, err := h.dishes.SearchByName(r.Context(), query)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDishResponses(ds))
}

// DishesByCategory filters the catalog by exact category.
func (h *Handler) DishesByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		respondError(w, http.StatusBadRequest, "category parameter is required")
		return
	}

	ds, err := h.dishes.ListByCategory(r.Context(), category)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDishResponses(ds))
}
