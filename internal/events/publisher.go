// Package events publishes domain events to NATS. Delivery is best effort:
// a publish failure is logged and never fails the request that produced it.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/spendwise/spendwise/internal/models"
)

const (
	SubjectExpenseCreated = "expenses.created"
	SubjectAccountLocked  = "auth.account_locked"
)

type Publisher struct {
	nc     *nats.Conn
	logger *zap.Logger
}

func NewPublisher(nc *nats.Conn, logger *zap.Logger) *Publisher {
	return &Publisher{nc: nc, logger: logger}
}

func (p *Publisher) publish(subject string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("marshal event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Warn("publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// ExpenseCreated announces a newly recorded expense.
func (p *Publisher) ExpenseCreated(expense *models.Expense) {
	p.publish(SubjectExpenseCreated, models.ExpenseEvent{
		ExpenseID: expense.ID,
		UserID:    expense.UserID,
		AccountID: expense.AccountID,
		Amount:    expense.Amount,
		Currency:  expense.Currency,
		Category:  expense.Category,
		Timestamp: expense.CreatedAt,
	})
}

// AccountLocked announces a lockout so the notification surface can alert
// the user.
func (p *Publisher) AccountLocked(userID uuid.UUID, lockedUntil time.Time) {
	p.publish(SubjectAccountLocked, models.LockoutEvent{
		UserID:      userID,
		LockedUntil: lockedUntil,
		Timestamp:   time.Now().UTC(),
	})
}
