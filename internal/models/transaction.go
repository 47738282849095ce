package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type TransactionKind string

const (
	KindDeposit  TransactionKind = "deposit"
	KindPurchase TransactionKind = "purchase"
	KindRefund   TransactionKind = "refund"
)

func (k TransactionKind) Valid() bool {
	switch k {
	case KindDeposit, KindPurchase, KindRefund:
		return true
	}
	return false
}

// Credits reports whether the kind adds to the balance.
func (k TransactionKind) Credits() bool {
	return k == KindDeposit || k == KindRefund
}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Transaction is an immutable ledger entry.
type Transaction struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	AccountID    uuid.UUID         `json:"accountId" db:"account_id"`
	AccountName  *string           `json:"accountName" db:"account_name"` // nil once the account is deleted
	Kind         TransactionKind   `json:"kind" db:"kind" example:"purchase"`
	Amount       int64             `json:"amount" db:"amount" example:"2500"` // minor units
	Description  string            `json:"description,omitempty" db:"description"`
	Items        []TransactionItem `json:"items,omitempty" db:"-"`
	Status       TransactionStatus `json:"status" db:"status" example:"completed"`
	BalanceAfter int64             `json:"balanceAfter" db:"balance_after"`
	CreatedBy    uuid.UUID         `json:"createdBy" db:"created_by"`
	CreatedAt    time.Time         `json:"createdAt" db:"created_at"`
}

// TransactionItem is a purchased line with the price captured at execution time.
type TransactionItem struct {
	ItemID    uuid.UUID `json:"itemId" db:"item_id"`
	Name      string    `json:"name" db:"name"`
	UnitPrice int64     `json:"unitPrice" db:"unit_price"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// MaxLineQuantity bounds the quantity of one item in a purchase.
const MaxLineQuantity = 1000

// Total is UnitPrice * Quantity. ok is false when the product overflows int64.
func (i TransactionItem) Total() (total int64, ok bool) {
	if i.Quantity < 0 || i.UnitPrice < 0 {
		return 0, false
	}
	if i.Quantity != 0 && i.UnitPrice > math.MaxInt64/int64(i.Quantity) {
		return 0, false
	}
	return i.UnitPrice * int64(i.Quantity), true
}

// LineItem is a requested purchase line before pricing.
type LineItem struct {
	ItemID   uuid.UUID
	Quantity int
}

// LedgerFilter narrows ledger listings.
type LedgerFilter struct {
	AccountID  *uuid.UUID
	AccountIDs []uuid.UUID // any-of, used for a parent viewing children
	Kind       TransactionKind
	Status     TransactionStatus
}
