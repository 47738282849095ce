// Package store is the Postgres persistence layer. It reports store-level
// sentinels; services translate them into application errors.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tuckshop/backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("optimistic lock failed")
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolation = "23505"

// UnitOfWork runs fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the set of writes the transaction engine performs atomically.
type LedgerTx interface {
	LockAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, newBalance int64, version int) error
	PriceItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Item, error)
	AppendTransaction(ctx context.Context, t *models.Transaction) error
}

type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// where accumulates numbered-placeholder predicates.
type where struct {
	clauses []string
	args    []any
}

// add appends a predicate; format receives the placeholder index as %d.
func (w *where) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(format, len(w.args)))
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// next is the placeholder index for the next argument.
func (w *where) next() int {
	return len(w.args) + 1
}

func uuidStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullUUID(nu uuid.NullUUID) *uuid.UUID {
	if !nu.Valid {
		return nil
	}
	id := nu.UUID
	return &id
}

func countRows(ctx context.Context, db *sql.DB, query string, args ...any) (int, error) {
	var total int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return total, nil
}
