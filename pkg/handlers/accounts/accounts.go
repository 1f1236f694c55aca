package accounts

import (
	"net/http"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/auth"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/mapping"
	"github.com/chris/store-payments/pkg/middleware"
)

// AccountsHandler holds the dependencies for registration and login.
type AccountsHandler struct {
	Auth *auth.Service
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(svc *auth.Service) *AccountsHandler {
	return &AccountsHandler{Auth: svc}
}

// Register creates an account and returns it with a bearer token.
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, "", err)
		return
	}

	reg := auth.Registration{Name: req.Name, Email: string(req.Email), Password: req.Password}
	if req.Phone != nil {
		reg.Phone = *req.Phone
	}

	user, token, err := h.Auth.Register(r.Context(), reg)
	if err != nil {
		response.Error(w, r, "Registration failed", err)
		return
	}

	response.JSON(w, http.StatusCreated, "User registered successfully", api.AuthResponse{
		User:  mapping.ToApiUser(user),
		Token: token,
	})
}

// Login exchanges credentials for a bearer token.
func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, "", err)
		return
	}

	user, token, err := h.Auth.Login(r.Context(), string(req.Email), req.Password)
	if err != nil {
		response.Error(w, r, "Login failed", err)
		return
	}

	response.JSON(w, http.StatusOK, "Login successful", api.AuthResponse{
		User:  mapping.ToApiUser(user),
		Token: token,
	})
}

// GetProfile returns the authenticated user.
func (h *AccountsHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	user, err := h.Auth.Profile(r.Context(), userID)
	if err != nil {
		response.Error(w, r, "Failed to retrieve profile", err)
		return
	}

	response.JSON(w, http.StatusOK, "", mapping.ToApiUser(user))
}
