package handler

import (
	"net/http"

	"github.com/mcoot/matchqueue/internal/api/middleware"
	"github.com/mcoot/matchqueue/internal/api/request"
	"github.com/mcoot/matchqueue/internal/api/response"
	"github.com/mcoot/matchqueue/internal/services/auth"
)

// AccountHandler handles account and session endpoints
type AccountHandler struct {
	authService *auth.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *auth.Service) *AccountHandler {
	return &AccountHandler{
		authService: authService,
	}
}

// Create handles POST /api/v1/accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAccountRequest
	if err := request.Decode(r.Body, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.MMR == nil {
		WriteError(w, NewInvalidRequestError("mmr is required"))
		return
	}

	account, err := h.authService.CreateAccount(r.Context(), req.Username, req.Password, req.Region, int(*req.MMR))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AccountFromModel(account))
}

// Login handles POST /api/v1/accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(r.Body, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LoginResponseFromResult(result))
}

// GetMe handles GET /api/v1/accounts/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	token := middleware.MustGetToken(r.Context())

	account, err := h.authService.ResolveAccountInfo(r.Context(), token)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(account))
}

// Logout handles POST /api/v1/accounts/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.MustGetToken(r.Context())

	if err := h.authService.Logout(token); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
