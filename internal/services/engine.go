package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/events"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/store"
	"go.uber.org/zap"
)

// ExecuteRequest is a balance-affecting operation against one account.
type ExecuteRequest struct {
	AccountID   uuid.UUID
	Kind        models.TransactionKind
	Amount      int64
	Description string
	Items       []models.LineItem
	ActorID     uuid.UUID
}

func (r ExecuteRequest) validate() error {
	if !r.Kind.Valid() {
		return apperrors.ErrInvalidKind
	}
	if r.Amount <= 0 {
		return apperrors.ErrInvalidAmount
	}
	if r.Kind == models.KindPurchase && len(r.Items) == 0 {
		return apperrors.ErrMissingPurchaseItems
	}
	if r.Kind != models.KindPurchase && len(r.Items) > 0 {
		return apperrors.Validation("items", "items are only accepted on purchases")
	}
	for _, line := range r.Items {
		if line.Quantity < 1 || line.Quantity > models.MaxLineQuantity {
			return apperrors.Validation("items", fmt.Sprintf("item quantity must be between 1 and %d", models.MaxLineQuantity))
		}
	}
	return nil
}

// Engine is the only writer of account balances and ledger rows. Each
// Execute is one database transaction holding the account's row lock.
type Engine struct {
	uow       store.UnitOfWork
	publisher events.Publisher
	audit     *AuditLogger
	logger    *zap.Logger
	now       func() time.Time
}

func NewEngine(uow store.UnitOfWork, publisher events.Publisher, audit *AuditLogger, logger *zap.Logger) *Engine {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Engine{
		uow:       uow,
		publisher: publisher,
		audit:     audit,
		logger:    logger.Named("engine"),
		now:       time.Now,
	}
}

// Execute applies req atomically. Conflicts and store failures are
// returned to the caller; nothing is retried here.
func (e *Engine) Execute(ctx context.Context, req ExecuteRequest) (*models.Transaction, error) {
	if err := req.validate(); err != nil {
		e.audit.LogError(req.AccountID, req.ActorID, req.Kind, req.Amount, err)
		return nil, err
	}

	var committed *models.Transaction
	err := e.uow.WithinTx(ctx, func(tx store.LedgerTx) error {
		account, err := tx.LockAccount(ctx, req.AccountID)
		if err != nil {
			return translate(err, apperrors.ErrAccountNotFound)
		}

		var lines []models.TransactionItem
		newBalance := account.Balance

		switch req.Kind {
		case models.KindDeposit, models.KindRefund:
			if account.Balance > math.MaxInt64-req.Amount {
				return apperrors.ErrInvalidAmount.WithMessage("Amount would overflow the account balance")
			}
			newBalance += req.Amount
		case models.KindPurchase:
			if lines, err = priceLines(ctx, tx, req.Items); err != nil {
				return err
			}
			total, err := purchaseTotal(lines)
			if err != nil {
				return err
			}
			if total != req.Amount {
				return apperrors.ErrInvalidAmount.WithMessage("Amount %d does not match the item total %d", req.Amount, total)
			}
			if account.Balance < req.Amount {
				return apperrors.ErrInsufficientFunds
			}
			newBalance -= req.Amount
		}

		if err := tx.UpdateBalance(ctx, account.ID, newBalance, account.Version); err != nil {
			return translate(err, apperrors.ErrAccountNotFound)
		}

		name := account.Name
		t := &models.Transaction{
			ID:           uuid.New(),
			AccountID:    account.ID,
			AccountName:  &name,
			Kind:         req.Kind,
			Amount:       req.Amount,
			Description:  req.Description,
			Items:        lines,
			Status:       models.StatusCompleted,
			BalanceAfter: newBalance,
			CreatedBy:    req.ActorID,
			CreatedAt:    e.now().UTC(),
		}
		if err := tx.AppendTransaction(ctx, t); err != nil {
			return apperrors.Unavailable(err)
		}

		committed = t
		return nil
	})
	if err != nil {
		err = translate(err, apperrors.ErrAccountNotFound)
		e.audit.LogError(req.AccountID, req.ActorID, req.Kind, req.Amount, err)
		return nil, err
	}

	e.audit.LogTransaction(committed)
	if err := e.publisher.PublishTransaction(ctx, events.NewTransactionCompleted(committed)); err != nil {
		e.logger.Warn("failed to publish transaction event",
			zap.String("transaction_id", committed.ID.String()),
			zap.Error(err),
		)
	}
	return committed, nil
}

// priceLines merges duplicate item ids and captures current prices.
func priceLines(ctx context.Context, tx store.LedgerTx, items []models.LineItem) ([]models.TransactionItem, error) {
	quantities := make(map[uuid.UUID]int, len(items))
	var order []uuid.UUID
	for _, l := range items {
		if _, seen := quantities[l.ItemID]; !seen {
			order = append(order, l.ItemID)
		}
		quantities[l.ItemID] += l.Quantity
		if quantities[l.ItemID] > models.MaxLineQuantity {
			return nil, apperrors.Validation("items", fmt.Sprintf("item quantity must be between 1 and %d", models.MaxLineQuantity))
		}
	}

	priced, err := tx.PriceItems(ctx, order)
	if err != nil {
		return nil, apperrors.Unavailable(err)
	}

	lines := make([]models.TransactionItem, 0, len(order))
	for _, id := range order {
		item, ok := priced[id]
		if !ok {
			return nil, apperrors.ErrItemNotFound.WithMessage("Item %s not found", id)
		}
		lines = append(lines, models.TransactionItem{
			ItemID:    id,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  quantities[id],
		})
	}
	return lines, nil
}

func purchaseTotal(lines []models.TransactionItem) (int64, error) {
	var total int64
	for _, l := range lines {
		lineTotal, ok := l.Total()
		if !ok || total > math.MaxInt64-lineTotal {
			return 0, apperrors.ErrInvalidAmount.WithMessage("Item total is too large")
		}
		total += lineTotal
	}
	return total, nil
}
