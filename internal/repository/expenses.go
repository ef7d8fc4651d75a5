package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spendwise/spendwise/internal/models"
)

// ExpenseRepository stores spending entries and computes report summaries.
type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create inserts the expense and debits the account balance inside one
// database transaction, so the recorded expenses and the balance can never
// diverge.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	expense.ID = uuid.New()
	expense.CreatedAt = time.Now().UTC()
	if expense.Date.IsZero() {
		expense.Date = expense.CreatedAt
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, account_id, amount, currency, category, description, date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		expense.ID, expense.UserID, expense.AccountID, expense.Amount.String(),
		expense.Currency, expense.Category, expense.Description, expense.Date, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	_, err = dbTx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance - $1, updated_at = $2 WHERE id = $3`,
		expense.Amount.String(), expense.CreatedAt, expense.AccountID,
	)
	if err != nil {
		return fmt.Errorf("debit account balance: %w", err)
	}

	return dbTx.Commit()
}

// List returns expenses matching the given filter with pagination, newest
// first.
func (r *ExpenseRepository) List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, error) {
	query := `
		SELECT id, user_id, account_id, amount, currency, category, description, date, created_at
		FROM expenses
		WHERE user_id = $1`

	args := []interface{}{filter.UserID}
	argIdx := 2

	if filter.AccountID != uuid.Nil {
		query += fmt.Sprintf(" AND account_id = $%d", argIdx)
		args = append(args, filter.AccountID)
		argIdx++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var amountStr string
		if err := rows.Scan(&e.ID, &e.UserID, &e.AccountID, &amountStr,
			&e.Currency, &e.Category, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CategorySummary groups a user's spending by category over an optional date
// range. Totals are summed in SQL and carried as decimals.
func (r *ExpenseRepository) CategorySummary(ctx context.Context, userID uuid.UUID, from, to *time.Time) (*models.ReportSummary, error) {
	query := `
		SELECT category, SUM(amount)::text, COUNT(*)
		FROM expenses
		WHERE user_id = $1`

	args := []interface{}{userID}
	argIdx := 2

	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *from)
		argIdx++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *to)
		argIdx++
	}

	query += " GROUP BY category ORDER BY SUM(amount) DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("category summary: %w", err)
	}
	defer rows.Close()

	summary := &models.ReportSummary{
		From:       from,
		To:         to,
		Total:      decimal.Zero,
		Categories: []models.CategoryTotal{},
	}
	for rows.Next() {
		var ct models.CategoryTotal
		var totalStr string
		if err := rows.Scan(&ct.Category, &totalStr, &ct.Count); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		ct.Total, err = decimal.NewFromString(totalStr)
		if err != nil {
			return nil, fmt.Errorf("parse total: %w", err)
		}
		summary.Categories = append(summary.Categories, ct)
		summary.Total = summary.Total.Add(ct.Total)
	}
	return summary, rows.Err()
}
