package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
)

// Ledger rows outlive their account, so the join is LEFT and the name may be NULL.
const ledgerSelect = `SELECT t.id, t.account_id, a.name, t.kind, t.amount, t.description, t.status,
	t.balance_after, t.created_by, t.created_at
	FROM transactions t
	LEFT JOIN accounts a ON a.id = t.account_id`

// LedgerStore reads the append-only transaction history. Writes happen
// only through LedgerTx.AppendTransaction.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		t           models.Transaction
		accountName sql.NullString
		description sql.NullString
	)
	err := row.Scan(&t.ID, &t.AccountID, &accountName, &t.Kind, &t.Amount, &description, &t.Status,
		&t.BalanceAfter, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.AccountName = nullString(accountName)
	t.Description = description.String
	return &t, nil
}

func (s *LedgerStore) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx, ledgerSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	txs := []models.Transaction{*t}
	if err := s.attachItems(ctx, txs); err != nil {
		return nil, err
	}
	return &txs[0], nil
}

func (s *LedgerStore) List(ctx context.Context, filter models.LedgerFilter, page query.Page) ([]models.Transaction, int, error) {
	var w where
	if filter.AccountID != nil {
		w.add("t.account_id = $%d", *filter.AccountID)
	}
	if len(filter.AccountIDs) > 0 {
		w.add("t.account_id = ANY($%d)", uuidStrings(filter.AccountIDs))
	}
	if filter.Kind != "" {
		w.add("t.kind = $%d", filter.Kind)
	}
	if filter.Status != "" {
		w.add("t.status = $%d", filter.Status)
	}

	total, err := countRows(ctx, s.db, "SELECT COUNT(*) FROM transactions t"+w.sql(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("%s%s ORDER BY %s, t.id LIMIT $%d OFFSET $%d",
		ledgerSelect, w.sql(), query.LedgerSort.OrderBy(page), w.next(), w.next()+1)
	rows, err := s.db.QueryContext(ctx, q, append(w.args, page.PageSize, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list transactions: %w", err)
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}

	if err := s.attachItems(ctx, txs); err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// attachItems loads purchase lines for txs in one query.
func (s *LedgerStore) attachItems(ctx context.Context, txs []models.Transaction) error {
	var ids []uuid.UUID
	index := make(map[uuid.UUID]int)
	for i, t := range txs {
		if t.Kind == models.KindPurchase {
			ids = append(ids, t.ID)
			index[t.ID] = i
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, item_id, name, unit_price, quantity
		FROM transaction_items
		WHERE transaction_id = ANY($1)
		ORDER BY id`, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			txID uuid.UUID
			item models.TransactionItem
		)
		if err := rows.Scan(&txID, &item.ItemID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return fmt.Errorf("list transaction items: %w", err)
		}
		if i, ok := index[txID]; ok {
			txs[i].Items = append(txs[i].Items, item)
		}
	}
	return rows.Err()
}
