package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/auth"
	"github.com/tuckshop/backend/internal/models"
	"go.uber.org/zap"
)

// CreateAccountInput is an admin-created account. OpeningBalance, when
// positive, is posted through the engine as a deposit.
type CreateAccountInput struct {
	models.AccountInput
	Password       string
	OpeningBalance int64
}

type AccountService struct {
	accounts AccountRepository
	schools  SchoolRepository
	hasher   *auth.PasswordHasher
	engine   *Engine
	audit    *AuditLogger
	logger   *zap.Logger
}

func NewAccountService(accounts AccountRepository, schools SchoolRepository, hasher *auth.PasswordHasher, engine *Engine, audit *AuditLogger, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		schools:  schools,
		hasher:   hasher,
		engine:   engine,
		audit:    audit,
		logger:   logger.Named("accounts"),
	}
}

func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.Get(ctx, id)
	if err != nil {
		return nil, translate(err, apperrors.ErrAccountNotFound)
	}
	return account, nil
}

// create validates references and persists spec. Shared by admin creation
// and self-registration.
func (s *AccountService) create(ctx context.Context, spec models.AccountSpec, password string) (*models.Account, error) {
	if err := s.checkReferences(ctx, spec.Fields().ParentID, spec.Fields().SchoolID); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.ErrInternal.Wrap(err)
	}

	account, err := s.accounts.Create(ctx, spec, hash)
	if err != nil {
		return nil, translate(err, apperrors.ErrAccountNotFound)
	}
	return account, nil
}

func (s *AccountService) Create(ctx context.Context, actor auth.Principal, in CreateAccountInput) (*models.Account, error) {
	if in.OpeningBalance < 0 {
		return nil, apperrors.Validation("openingBalance", "openingBalance must not be negative")
	}

	spec, err := models.NewAccountSpec(in.AccountInput)
	if err != nil {
		return nil, err
	}

	account, err := s.create(ctx, spec, in.Password)
	if err != nil {
		return nil, err
	}
	s.audit.LogOperation(actor.AccountID, "ACCOUNT_CREATED", account.ID)

	if in.OpeningBalance > 0 {
		tx, err := s.engine.Execute(ctx, ExecuteRequest{
			AccountID:   account.ID,
			Kind:        models.KindDeposit,
			Amount:      in.OpeningBalance,
			Description: "Opening balance",
			ActorID:     actor.AccountID,
		})
		if err != nil {
			s.logger.Error("opening balance deposit failed",
				zap.String("account_id", account.ID.String()),
				zap.Error(err),
			)
			s.discard(ctx, actor, account.ID)
			return nil, err
		}
		account.Balance = tx.BalanceAfter
		account.Version++
	}
	return account, nil
}

// discard removes an account whose creation could not be completed, so a
// retry does not hit a duplicate identifier.
func (s *AccountService) discard(ctx context.Context, actor auth.Principal, id uuid.UUID) {
	if err := s.accounts.Delete(context.WithoutCancel(ctx), id); err != nil {
		s.logger.Error("failed to remove partially created account",
			zap.String("account_id", id.String()),
			zap.Error(err),
		)
		return
	}
	s.audit.LogOperation(actor.AccountID, "ACCOUNT_CREATE_ROLLED_BACK", id)
}

func (s *AccountService) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, patch models.AccountPatch) (*models.Account, error) {
	if patch.Empty() {
		return nil, apperrors.Validation("body", "at least one field must be provided")
	}

	existing, err := s.accounts.Get(ctx, id)
	if err != nil {
		return nil, translate(err, apperrors.ErrAccountNotFound)
	}

	if err := patch.Validate(existing.Role); err != nil {
		return nil, err
	}
	if patch.ParentID != nil && *patch.ParentID == id {
		return nil, apperrors.Validation("parentId", "an account cannot be its own parent")
	}
	if err := s.checkReferences(ctx, patch.ParentID, patch.SchoolID); err != nil {
		return nil, err
	}

	reset := patch.Password != nil
	if reset {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, apperrors.ErrInternal.Wrap(err)
		}
		patch.PasswordHash = &hash
		patch.Password = nil
	}

	account, err := s.accounts.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err, apperrors.ErrAccountNotFound)
	}
	s.audit.LogOperation(actor.AccountID, "ACCOUNT_UPDATED", id)
	if reset {
		s.audit.LogOperation(actor.AccountID, "ACCOUNT_PASSWORD_RESET", id)
	}
	return account, nil
}

// Delete removes the account. A parent's children are unlinked, not
// deleted, and ledger history is retained.
func (s *AccountService) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	if id == actor.AccountID {
		return apperrors.Validation("id", "admins cannot delete their own account")
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		return translate(err, apperrors.ErrAccountNotFound)
	}
	s.audit.LogOperation(actor.AccountID, "ACCOUNT_DELETED", id)
	return nil
}

func (s *AccountService) checkReferences(ctx context.Context, parentID, schoolID *uuid.UUID) error {
	if parentID != nil {
		parent, err := s.accounts.Get(ctx, *parentID)
		if err != nil {
			err = translate(err, apperrors.ErrAccountNotFound)
			if errors.Is(err, apperrors.ErrAccountNotFound) {
				return apperrors.Validation("parentId", "parentId must reference a parent account")
			}
			return err
		}
		if parent.Role != models.RoleParent {
			return apperrors.Validation("parentId", "parentId must reference a parent account")
		}
	}
	if schoolID != nil {
		if _, err := s.schools.Get(ctx, *schoolID); err != nil {
			err = translate(err, apperrors.ErrSchoolNotFound)
			if errors.Is(err, apperrors.ErrSchoolNotFound) {
				return apperrors.Validation("schoolId", "schoolId must reference an existing school")
			}
			return err
		}
	}
	return nil
}
