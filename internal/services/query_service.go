package services

import (
	"context"

	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
)

// QueryService serves paginated reads. It never writes.
type QueryService struct {
	accounts AccountRepository
	ledger   LedgerRepository
	items    ItemRepository
	schools  SchoolRepository
}

func NewQueryService(accounts AccountRepository, ledger LedgerRepository, items ItemRepository, schools SchoolRepository) *QueryService {
	return &QueryService{accounts: accounts, ledger: ledger, items: items, schools: schools}
}

func (s *QueryService) Accounts(ctx context.Context, filter models.AccountFilter, page query.Page) (query.Result[models.Account], error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return query.Result[models.Account]{}, apperrors.Validation("role", "role must be one of student, parent, admin")
	}
	accounts, total, err := s.accounts.List(ctx, filter, page)
	if err != nil {
		return query.Result[models.Account]{}, translate(err, apperrors.ErrAccountNotFound)
	}
	return query.NewResult(accounts, page, total), nil
}

func (s *QueryService) Ledger(ctx context.Context, filter models.LedgerFilter, page query.Page) (query.Result[models.Transaction], error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return query.Result[models.Transaction]{}, apperrors.ErrInvalidKind
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return query.Result[models.Transaction]{}, apperrors.Validation("status", "status must be one of pending, completed, failed")
	}
	txs, total, err := s.ledger.List(ctx, filter, page)
	if err != nil {
		return query.Result[models.Transaction]{}, translate(err, apperrors.ErrTransactionNotFound)
	}
	return query.NewResult(txs, page, total), nil
}

func (s *QueryService) Items(ctx context.Context, filter models.ItemFilter, page query.Page) (query.Result[models.Item], error) {
	items, total, err := s.items.List(ctx, filter, page)
	if err != nil {
		return query.Result[models.Item]{}, translate(err, apperrors.ErrItemNotFound)
	}
	return query.NewResult(items, page, total), nil
}

func (s *QueryService) Schools(ctx context.Context, page query.Page) (query.Result[models.School], error) {
	schools, total, err := s.schools.List(ctx, page)
	if err != nil {
		return query.Result[models.School]{}, translate(err, apperrors.ErrSchoolNotFound)
	}
	return query.NewResult(schools, page, total), nil
}
