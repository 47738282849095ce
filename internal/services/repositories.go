package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
	"github.com/tuckshop/backend/internal/store"
)

type AccountRepository interface {
	FindByIdentifier(ctx context.Context, kind models.IdentifierKind, value string) (*models.Account, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Account, error)
	Create(ctx context.Context, spec models.AccountSpec, passwordHash string) (*models.Account, error)
	Update(ctx context.Context, id uuid.UUID, patch models.AccountPatch) (*models.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.AccountFilter, page query.Page) ([]models.Account, int, error)
	HasRole(ctx context.Context, role models.Role) (bool, error)
}

type LedgerRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, filter models.LedgerFilter, page query.Page) ([]models.Transaction, int, error)
}

type ItemRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, id uuid.UUID, patch models.ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.ItemFilter, page query.Page) ([]models.Item, int, error)
}

type SchoolRepository interface {
	Create(ctx context.Context, name string) (*models.School, error)
	Get(ctx context.Context, id uuid.UUID) (*models.School, error)
	List(ctx context.Context, page query.Page) ([]models.School, int, error)
}

var (
	_ AccountRepository = (*store.AccountStore)(nil)
	_ LedgerRepository  = (*store.LedgerStore)(nil)
	_ ItemRepository    = (*store.ItemStore)(nil)
	_ SchoolRepository  = (*store.SchoolStore)(nil)
)

// translate maps store sentinels to application errors. notFound is the
// error reported for store.ErrNotFound.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFound
	case errors.Is(err, store.ErrDuplicate):
		return apperrors.ErrDuplicateIdentifier
	case errors.Is(err, store.ErrConflict):
		return apperrors.ErrConflict
	default:
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.Unavailable(err)
	}
}
