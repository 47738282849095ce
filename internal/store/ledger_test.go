package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
)

var ledgerRowColumns = []string{"id", "account_id", "name", "kind", "amount", "description", "status",
	"balance_after", "created_by", "created_at"}

func TestLedgerStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	accountID := uuid.New()
	purchaseID, depositID := uuid.New(), uuid.New()
	itemID := uuid.New()
	page := query.Page{Page: 1, PageSize: 10, Sort: "createdAt", Order: query.Desc}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM transactions t WHERE t.account_id = \\$1 AND t.kind = \\$2").
		WithArgs(accountID, "purchase").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("LEFT JOIN accounts a ON a.id = t.account_id WHERE t.account_id = \\$1 AND t.kind = \\$2 ORDER BY t.created_at DESC, t.id LIMIT \\$3 OFFSET \\$4").
		WithArgs(accountID, "purchase", 10, 0).
		WillReturnRows(sqlmock.NewRows(ledgerRowColumns).
			AddRow(purchaseID.String(), accountID.String(), "Ada", "purchase", 1000, nil, "completed", 500, accountID.String(), time.Now()).
			AddRow(depositID.String(), accountID.String(), nil, "deposit", 1500, "pocket money", "completed", 1500, uuid.New().String(), time.Now()))
	mock.ExpectQuery("FROM transaction_items WHERE transaction_id = ANY\\(\\$1\\)").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "item_id", "name", "unit_price", "quantity"}).
			AddRow(purchaseID.String(), itemID.String(), "Meat pie", 500, 2))

	filter := models.LedgerFilter{AccountID: &accountID, Kind: models.KindPurchase}
	txs, total, err := NewLedgerStore(db).List(context.Background(), filter, page)
	require.NoError(t, err)

	assert.Equal(t, 2, total)
	require.Len(t, txs, 2)
	assert.Equal(t, "Ada", *txs[0].AccountName)
	require.Len(t, txs[0].Items, 1)
	lineTotal, ok := txs[0].Items[0].Total()
	assert.True(t, ok)
	assert.Equal(t, int64(1000), lineTotal)
	assert.Nil(t, txs[1].AccountName, "deleted account leaves a null name")
	assert.Equal(t, "pocket money", txs[1].Description)
	assert.Empty(t, txs[1].Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStore_Get(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewLedgerStore(db)
	id := uuid.New()

	t.Run("deposit has no item lookup", func(t *testing.T) {
		mock.ExpectQuery("WHERE t.id = \\$1").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(ledgerRowColumns).
				AddRow(id.String(), uuid.New().String(), "Ada", "deposit", 1500, nil, "completed", 1500, uuid.New().String(), time.Now()))

		tx, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.KindDeposit, tx.Kind)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("WHERE t.id = \\$1").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(ledgerRowColumns))

		_, err := s.Get(ctx, id)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
