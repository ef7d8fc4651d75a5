package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spendwise/spendwise/internal/events"
	"github.com/spendwise/spendwise/internal/models"
	"github.com/spendwise/spendwise/internal/repository"
)

// ExpensesHandler serves expense entry, listing, and the category report.
type ExpensesHandler struct {
	expenses *repository.ExpenseRepository
	accounts *repository.AccountRepository
	events   *events.Publisher
	logger   *zap.Logger
}

func NewExpensesHandler(expenses *repository.ExpenseRepository, accounts *repository.AccountRepository, publisher *events.Publisher, logger *zap.Logger) *ExpensesHandler {
	return &ExpensesHandler{
		expenses: expenses,
		accounts: accounts,
		events:   publisher,
		logger:   logger,
	}
}

func (h *ExpensesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/expenses", h.Create)
	mux.HandleFunc("GET /api/v1/expenses", h.List)
	mux.HandleFunc("GET /api/v1/reports/summary", h.Summary)
}

// Create handles POST /api/v1/expenses
func (h *ExpensesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req models.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AccountID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	account, err := h.accounts.GetByID(r.Context(), req.AccountID)
	if err != nil {
		h.logger.Error("get account", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if account == nil || account.UserID != userID {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = account.Currency
	}

	expense := &models.Expense{
		UserID:      userID,
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Currency:    currency,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}

	if err := h.expenses.Create(r.Context(), expense); err != nil {
		h.logger.Error("create expense", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create expense")
		return
	}

	if h.events != nil {
		h.events.ExpenseCreated(expense)
	}

	writeJSON(w, http.StatusCreated, expense)
}

// List handles GET /api/v1/expenses?account_id=&category=&from=&to=&limit=&offset=
func (h *ExpensesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	filter := models.ExpenseFilter{
		UserID: userID,
		Limit:  20,
		Offset: 0,
	}

	q := r.URL.Query()

	if v := q.Get("account_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid account_id")
			return
		}
		filter.AccountID = id
	}
	filter.Category = q.Get("category")

	var badDate bool
	filter.From, badDate = parseDateParam(q.Get("from"))
	if badDate {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	filter.To, badDate = parseDateParam(q.Get("to"))
	if badDate {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	expenses, err := h.expenses.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list expenses", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"expenses": expenses,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// Summary handles GET /api/v1/reports/summary?from=&to=
func (h *ExpensesHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	q := r.URL.Query()
	from, badDate := parseDateParam(q.Get("from"))
	if badDate {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, badDate := parseDateParam(q.Get("to"))
	if badDate {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	summary, err := h.expenses.CategorySummary(r.Context(), userID, from, to)
	if err != nil {
		h.logger.Error("category summary", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// parseDateParam accepts RFC 3339 timestamps or bare dates. The second
// return is true when the value was present but unparseable.
func parseDateParam(v string) (*time.Time, bool) {
	if v == "" {
		return nil, false
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, false
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return &t, false
	}
	return nil, true
}
