package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/auth"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
)

// CreateTransactionInput is a caller's request before authorization.
type CreateTransactionInput struct {
	AccountID   *uuid.UUID // defaults to the caller
	Kind        models.TransactionKind
	Amount      int64
	Description string
	Items       []models.LineItem
}

// TransactionService applies role rules in front of the engine and the
// ledger reads.
type TransactionService struct {
	engine   *Engine
	accounts AccountRepository
	ledger   LedgerRepository
	queries  *QueryService
}

func NewTransactionService(engine *Engine, accounts AccountRepository, ledger LedgerRepository, queries *QueryService) *TransactionService {
	return &TransactionService{engine: engine, accounts: accounts, ledger: ledger, queries: queries}
}

func (s *TransactionService) Create(ctx context.Context, p auth.Principal, in CreateTransactionInput) (*models.Transaction, error) {
	accountID := p.AccountID
	if in.AccountID != nil {
		accountID = *in.AccountID
	}

	if err := s.authorize(ctx, p, accountID, in.Kind); err != nil {
		return nil, err
	}

	return s.engine.Execute(ctx, ExecuteRequest{
		AccountID:   accountID,
		Kind:        in.Kind,
		Amount:      in.Amount,
		Description: in.Description,
		Items:       in.Items,
		ActorID:     p.AccountID,
	})
}

// authorize: admins may do anything; parents may deposit or purchase for
// themselves and their children; students may only purchase for themselves.
func (s *TransactionService) authorize(ctx context.Context, p auth.Principal, accountID uuid.UUID, kind models.TransactionKind) error {
	switch p.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleStudent:
		if accountID != p.AccountID || kind != models.KindPurchase {
			return apperrors.ErrForbidden
		}
		return nil
	case models.RoleParent:
		if kind != models.KindDeposit && kind != models.KindPurchase {
			return apperrors.ErrForbidden
		}
		ok, err := s.isSelfOrChild(ctx, p, accountID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrForbidden
		}
		return nil
	default:
		return apperrors.ErrForbidden
	}
}

func (s *TransactionService) isSelfOrChild(ctx context.Context, p auth.Principal, accountID uuid.UUID) (bool, error) {
	if accountID == p.AccountID {
		return true, nil
	}
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		err = translate(err, apperrors.ErrAccountNotFound)
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return account.ParentID != nil && *account.ParentID == p.AccountID, nil
}

// canView reports whether p may read the ledger of accountID.
func (s *TransactionService) canView(ctx context.Context, p auth.Principal, accountID uuid.UUID) (bool, error) {
	switch p.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleParent:
		return s.isSelfOrChild(ctx, p, accountID)
	default:
		return accountID == p.AccountID, nil
	}
}

// ListOwn lists the caller's ledger. A parent may pass a child's account id.
func (s *TransactionService) ListOwn(ctx context.Context, p auth.Principal, accountID *uuid.UUID, filter models.LedgerFilter, page query.Page) (query.Result[models.Transaction], error) {
	target := p.AccountID
	if accountID != nil {
		target = *accountID
	}

	ok, err := s.canView(ctx, p, target)
	if err != nil {
		return query.Result[models.Transaction]{}, err
	}
	if !ok {
		return query.Result[models.Transaction]{}, apperrors.ErrForbidden
	}

	filter.AccountID = &target
	filter.AccountIDs = nil
	return s.queries.Ledger(ctx, filter, page)
}

// ListAll is the admin view across every account.
func (s *TransactionService) ListAll(ctx context.Context, p auth.Principal, filter models.LedgerFilter, page query.Page) (query.Result[models.Transaction], error) {
	if !p.IsAdmin() {
		return query.Result[models.Transaction]{}, apperrors.ErrForbidden
	}
	return s.queries.Ledger(ctx, filter, page)
}

// Get returns one entry. Entries the caller may not see are reported as
// not found.
func (s *TransactionService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, translate(err, apperrors.ErrTransactionNotFound)
	}

	ok, err := s.canView(ctx, p, tx.AccountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrTransactionNotFound
	}
	return tx, nil
}
