package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/feastly/feastly/internal/auth"
	"github.com/feastly/feastly/internal/domain/customer"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Token   string `json:"token"`
}

type customerResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Country        string `json:"country,omitempty"`
	State          string `json:"state,omitempty"`
}

func toCustomerResponse(c *customer.Customer) customerResponse {
	return customerResponse{
		ID:             c.ID,
		Name:           c.Name,
		Email:          c.Email,
		ProfilePicture: c.ProfilePicture,
		Country:        c.Country,
		State:          c.State,
	}
}

// CustomerSignup registers a new customer account and issues a session token.
func (h *Handler) CustomerSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
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

	id, err := h.customers.Create(r.Context(), &customer.Customer{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(auth.Principal{ID: id, Kind: auth.KindCustomer})
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

// CustomerLogin verifies credentials and issues a session token.
func (h *Handler) CustomerLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.customers.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.respondDomainError(w, r, err)
		return
	}
	if err := auth.CheckPassword(c.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(auth.Principal{ID: c.ID, Kind: auth.KindCustomer})
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{
		Message: "Login successful",
		ID:      c.ID,
		Token:   token,
	})
}

// CustomerProfile returns the authenticated customer's profile.
func (h *Handler) CustomerProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customer_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if !h.authorizeID(w, r, auth.KindCustomer, id) {
		return
	}

	c, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCustomerResponse(c))
}

type customerProfileUpdateRequest struct {
	Name           *string `json:"name"`
	ProfilePicture *string `json:"profile_picture"`
	Country        *string `json:"country"`
	State          *string `json:"state"`
}

// CustomerProfileUpdate applies a partial update to the customer's profile.
func (h *Handler) CustomerProfileUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customer_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if !h.authorizeID(w, r, auth.KindCustomer, id) {
		return
	}

	var req customerProfileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	upd := customer.ProfileUpdate{
		Name:           req.Name,
		ProfilePicture: req.ProfilePicture,
		Country:        req.Country,
		State:          req.State,
	}
	if upd.Empty() {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.customers.UpdateProfile(r.Context(), id, upd); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
}
