package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/models"
)

// PostgresUnitOfWork scopes engine writes to a single sql.Tx.
type PostgresUnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db}
}

var _ UnitOfWork = (*PostgresUnitOfWork)(nil)

func (u *PostgresUnitOfWork) WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&pgLedgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type pgLedgerTx struct {
	tx *sql.Tx
}

// LockAccount loads the account and holds its row lock until the
// transaction ends, serialising writers on the same account.
func (p *pgLedgerTx) LockAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := p.tx.QueryRowContext(ctx, `
		SELECT id, name, role, balance, version, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE`, id).Scan(&account.ID, &account.Name, &account.Role, &account.Balance, &account.Version, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock account %s: %w", id, err)
	}
	return &account, nil
}

func (p *pgLedgerTx) UpdateBalance(ctx context.Context, id uuid.UUID, newBalance int64, version int) error {
	result, err := p.tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		newBalance, time.Now().UTC(), id, version)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if rowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// PriceItems reads current prices inside the transaction so the captured
// unit price is the one the balance was checked against.
func (p *pgLedgerTx) PriceItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Item, error) {
	rows, err := p.tx.QueryContext(ctx, `
		SELECT id, name, price
		FROM items
		WHERE id = ANY($1)`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("price items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID]models.Item, len(ids))
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
			return nil, fmt.Errorf("price items: %w", err)
		}
		items[item.ID] = item
	}
	return items, rows.Err()
}

func (p *pgLedgerTx) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	_, err := p.tx.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, kind, amount, description, status, balance_after, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.AccountID, t.Kind, t.Amount, t.Description, t.Status, t.BalanceAfter, t.CreatedBy, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	for _, item := range t.Items {
		_, err := p.tx.ExecContext(ctx, `
			INSERT INTO transaction_items (transaction_id, item_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			t.ID, item.ItemID, item.Name, item.UnitPrice, item.Quantity)
		if err != nil {
			return fmt.Errorf("append transaction item: %w", err)
		}
	}
	return nil
}
