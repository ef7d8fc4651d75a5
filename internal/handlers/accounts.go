package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spendwise/spendwise/internal/middleware"
	"github.com/spendwise/spendwise/internal/models"
	"github.com/spendwise/spendwise/internal/repository"
)

// AccountsHandler serves wallet and account CRUD for the logged-in user.
type AccountsHandler struct {
	repo   *repository.AccountRepository
	logger *zap.Logger
}

func NewAccountsHandler(repo *repository.AccountRepository, logger *zap.Logger) *AccountsHandler {
	return &AccountsHandler{repo: repo, logger: logger}
}

func (h *AccountsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/accounts", h.Create)
	mux.HandleFunc("GET /api/v1/accounts", h.List)
	mux.HandleFunc("GET /api/v1/accounts/{id}", h.Get)
}

func currentUserID(r *http.Request) (uuid.UUID, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

var validAccountTypes = map[models.AccountType]bool{
	models.AccountTypeChecking: true,
	models.AccountTypeSavings:  true,
	models.AccountTypeCredit:   true,
	models.AccountTypeCash:     true,
}

func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !validAccountTypes[models.AccountType(req.Type)] {
		writeError(w, http.StatusBadRequest, "invalid account type")
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	account := &models.Account{
		UserID:   userID,
		Name:     req.Name,
		Type:     models.AccountType(req.Type),
		Currency: req.Currency,
	}
	if err := h.repo.Create(r.Context(), account); err != nil {
		h.logger.Error("create account", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create account")
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	accounts, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list accounts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	account, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get account", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	// Another user's account is indistinguishable from a missing one.
	if account == nil || account.UserID != userID {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	writeJSON(w, http.StatusOK, account)
}
