package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spendwise/spendwise/internal/models"
)

func TestListExpenses_FilterBuilding(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExpenseRepository(db)

	userID := uuid.New()
	accountID := uuid.New()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "account_id", "amount", "currency", "category", "description", "date", "created_at",
	}).AddRow(uuid.New(), userID, accountID, "64.30", "USD", "food", "Grocery shopping", from, from)

	mock.ExpectQuery(`(?s)SELECT .+ FROM expenses\s+WHERE user_id = \$1 AND account_id = \$2 AND category = \$3 AND date >= \$4 ORDER BY date DESC LIMIT \$5 OFFSET \$6`).
		WithArgs(userID, accountID, "food", from, 20, 0).
		WillReturnRows(rows)

	expenses, err := repo.List(context.Background(), models.ExpenseFilter{
		UserID:    userID,
		AccountID: accountID,
		Category:  "food",
		From:      &from,
		Limit:     20,
	})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	require.Equal(t, "64.3", expenses[0].Amount.String())
	require.Equal(t, "food", expenses[0].Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorySummary(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExpenseRepository(db)
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"category", "sum", "count"}).
		AddRow("food", "136.80", 2).
		AddRow("transport", "42.00", 1)

	mock.ExpectQuery(`SELECT category, SUM\(amount\)::text, COUNT\(\*\)\s+FROM expenses\s+WHERE user_id = \$1 GROUP BY category`).
		WithArgs(userID).
		WillReturnRows(rows)

	summary, err := repo.CategorySummary(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	require.Len(t, summary.Categories, 2)
	require.Equal(t, "food", summary.Categories[0].Category)
	require.Equal(t, 2, summary.Categories[0].Count)
	// 136.80 + 42.00
	require.Equal(t, "178.8", summary.Total.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorySummary_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExpenseRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT category, SUM`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"category", "sum", "count"}))

	summary, err := repo.CategorySummary(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	require.Empty(t, summary.Categories)
	require.True(t, summary.Total.IsZero())
}

func TestCreateExpense_InsertsAndDebitsAtomically(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExpenseRepository(db)

	accountID := uuid.New()
	expense := &models.Expense{
		UserID:    uuid.New(),
		AccountID: accountID,
		Amount:    decimal.RequireFromString("12.50"),
		Category:  "food",
	}

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)INSERT INTO expenses`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE accounts SET balance = balance - \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("12.5", sqlmock.AnyArg(), accountID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), expense))
	require.NotEqual(t, uuid.Nil, expense.ID)
	require.Equal(t, expense.CreatedAt, expense.Date)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateExpense_DebitFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExpenseRepository(db)

	expense := &models.Expense{
		UserID:    uuid.New(),
		AccountID: uuid.New(),
		Amount:    decimal.RequireFromString("12.50"),
		Category:  "food",
	}

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)INSERT INTO expenses`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE accounts`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), expense)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
