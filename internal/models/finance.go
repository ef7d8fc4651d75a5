package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCredit   AccountType = "credit"
	AccountTypeCash     AccountType = "cash"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusClosed AccountStatus = "closed"
)

// Account is a wallet or bank account an expense is drawn against.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	Status    AccountStatus   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Expense is a single spending entry.
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Request types

type CreateAccountRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

type CreateExpenseRequest struct {
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        *time.Time      `json:"date,omitempty"`
}

// ExpenseFilter holds query parameters for listing expenses.
type ExpenseFilter struct {
	UserID    uuid.UUID
	AccountID uuid.UUID
	Category  string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// CategoryTotal is one row of the spending report.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// ReportSummary groups a user's spending by category over a date range.
type ReportSummary struct {
	From       *time.Time      `json:"from,omitempty"`
	To         *time.Time      `json:"to,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Categories []CategoryTotal `json:"categories"`
}

// AlertPreferences holds a user's budget alert settings.
type AlertPreferences struct {
	UserID          uuid.UUID       `json:"user_id"`
	MonthlyBudget   decimal.Decimal `json:"monthly_budget"`
	AlertThreshold  int             `json:"alert_threshold"`
	EmailAlerts     bool            `json:"email_alerts"`
	LargeExpenseMin decimal.Decimal `json:"large_expense_min"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ExpenseEvent is published to NATS after an expense is recorded.
type ExpenseEvent struct {
	ExpenseID uuid.UUID       `json:"expense_id"`
	UserID    uuid.UUID       `json:"user_id"`
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Category  string          `json:"category"`
	Timestamp time.Time       `json:"timestamp"`
}

// LockoutEvent is published to NATS when an account is locked after
// repeated failed logins.
type LockoutEvent struct {
	UserID      uuid.UUID `json:"user_id"`
	LockedUntil time.Time `json:"locked_until"`
	Timestamp   time.Time `json:"timestamp"`
}
