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

// AlertRepository stores per-user budget alert preferences.
type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Get returns the user's alert preferences, or defaults when none are saved
// yet.
func (r *AlertRepository) Get(ctx context.Context, userID uuid.UUID) (*models.AlertPreferences, error) {
	prefs := &models.AlertPreferences{}
	var budgetStr, largeMinStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, monthly_budget, alert_threshold, email_alerts, large_expense_min, updated_at
		 FROM alert_preferences WHERE user_id = $1`, userID,
	).Scan(&prefs.UserID, &budgetStr, &prefs.AlertThreshold, &prefs.EmailAlerts, &largeMinStr, &prefs.UpdatedAt)
	if err == sql.ErrNoRows {
		return &models.AlertPreferences{
			UserID:          userID,
			MonthlyBudget:   decimal.Zero,
			AlertThreshold:  80,
			EmailAlerts:     true,
			LargeExpenseMin: decimal.Zero,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get alert preferences: %w", err)
	}

	prefs.MonthlyBudget, err = decimal.NewFromString(budgetStr)
	if err != nil {
		return nil, fmt.Errorf("parse monthly budget: %w", err)
	}
	prefs.LargeExpenseMin, err = decimal.NewFromString(largeMinStr)
	if err != nil {
		return nil, fmt.Errorf("parse large expense min: %w", err)
	}
	return prefs, nil
}

// Upsert saves the user's alert preferences, replacing any existing row.
func (r *AlertRepository) Upsert(ctx context.Context, prefs *models.AlertPreferences) error {
	prefs.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alert_preferences (user_id, monthly_budget, alert_threshold, email_alerts, large_expense_min, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE SET
		   monthly_budget = EXCLUDED.monthly_budget,
		   alert_threshold = EXCLUDED.alert_threshold,
		   email_alerts = EXCLUDED.email_alerts,
		   large_expense_min = EXCLUDED.large_expense_min,
		   updated_at = EXCLUDED.updated_at`,
		prefs.UserID, prefs.MonthlyBudget.String(), prefs.AlertThreshold,
		prefs.EmailAlerts, prefs.LargeExpenseMin.String(), prefs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save alert preferences: %w", err)
	}
	return nil
}
