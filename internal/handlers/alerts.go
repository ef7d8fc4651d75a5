package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spendwise/spendwise/internal/models"
	"github.com/spendwise/spendwise/internal/repository"
)

// AlertsHandler serves the budget alert preference endpoints.
type AlertsHandler struct {
	repo   *repository.AlertRepository
	logger *zap.Logger
}

func NewAlertsHandler(repo *repository.AlertRepository, logger *zap.Logger) *AlertsHandler {
	return &AlertsHandler{repo: repo, logger: logger}
}

func (h *AlertsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/alerts/preferences", h.Get)
	mux.HandleFunc("PUT /api/v1/alerts/preferences", h.Update)
}

func (h *AlertsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	prefs, err := h.repo.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("get alert preferences", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}

func (h *AlertsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var prefs models.AlertPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if prefs.MonthlyBudget.LessThan(decimal.Zero) {
		writeError(w, http.StatusBadRequest, "monthly_budget cannot be negative")
		return
	}
	if prefs.AlertThreshold < 0 || prefs.AlertThreshold > 100 {
		writeError(w, http.StatusBadRequest, "alert_threshold must be between 0 and 100")
		return
	}
	if prefs.LargeExpenseMin.LessThan(decimal.Zero) {
		writeError(w, http.StatusBadRequest, "large_expense_min cannot be negative")
		return
	}

	prefs.UserID = userID
	if err := h.repo.Upsert(r.Context(), &prefs); err != nil {
		h.logger.Error("save alert preferences", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}
