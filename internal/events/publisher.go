// Package events publishes domain events after the ledger commits.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tuckshop/backend/internal/models"
)

const TypeTransactionCompleted = "transaction.completed"

// TransactionCompleted is emitted once per committed ledger entry.
type TransactionCompleted struct {
	Type          string                 `json:"type"`
	TransactionID uuid.UUID              `json:"transactionId"`
	AccountID     uuid.UUID              `json:"accountId"`
	Kind          models.TransactionKind `json:"kind"`
	Amount        int64                  `json:"amount"`
	AmountMajor   decimal.Decimal        `json:"amountMajor"`
	BalanceAfter  int64                  `json:"balanceAfter"`
	ActorID       uuid.UUID              `json:"actorId"`
	OccurredAt    time.Time              `json:"occurredAt"`
}

func NewTransactionCompleted(t *models.Transaction) TransactionCompleted {
	return TransactionCompleted{
		Type:          TypeTransactionCompleted,
		TransactionID: t.ID,
		AccountID:     t.AccountID,
		Kind:          t.Kind,
		Amount:        t.Amount,
		AmountMajor:   models.Major(t.Amount),
		BalanceAfter:  t.BalanceAfter,
		ActorID:       t.CreatedBy,
		OccurredAt:    t.CreatedAt,
	}
}

type Publisher interface {
	PublishTransaction(ctx context.Context, event TransactionCompleted) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTransaction(context.Context, TransactionCompleted) error { return nil }
func (NoopPublisher) Close() error                                                   { return nil }
