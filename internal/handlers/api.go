package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/auth"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
	"github.com/tuckshop/backend/internal/services"
)

// The handler dependencies. Implemented by the types in internal/services.

type AuthAPI interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, identifier, password string, role models.Role) (*services.AuthResult, error)
	Logout(ctx context.Context, p auth.Principal)
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
}

type AccountAPI interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Account, error)
	Create(ctx context.Context, actor auth.Principal, in services.CreateAccountInput) (*models.Account, error)
	Update(ctx context.Context, actor auth.Principal, id uuid.UUID, patch models.AccountPatch) (*models.Account, error)
	Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error
}

type BadgeRenderer interface {
	PNG(account *models.Account) ([]byte, error)
}

type QueryAPI interface {
	Accounts(ctx context.Context, filter models.AccountFilter, page query.Page) (query.Result[models.Account], error)
	Items(ctx context.Context, filter models.ItemFilter, page query.Page) (query.Result[models.Item], error)
	Schools(ctx context.Context, page query.Page) (query.Result[models.School], error)
}

type TransactionAPI interface {
	Create(ctx context.Context, p auth.Principal, in services.CreateTransactionInput) (*models.Transaction, error)
	ListOwn(ctx context.Context, p auth.Principal, accountID *uuid.UUID, filter models.LedgerFilter, page query.Page) (query.Result[models.Transaction], error)
	ListAll(ctx context.Context, p auth.Principal, filter models.LedgerFilter, page query.Page) (query.Result[models.Transaction], error)
	Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Transaction, error)
}

type ItemAPI interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Create(ctx context.Context, actor auth.Principal, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, actor auth.Principal, id uuid.UUID, patch models.ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error
}

type SchoolAPI interface {
	Create(ctx context.Context, actor auth.Principal, name string) (*models.School, error)
}

var (
	_ AuthAPI        = (*services.AuthService)(nil)
	_ AccountAPI     = (*services.AccountService)(nil)
	_ BadgeRenderer  = (*services.BadgeService)(nil)
	_ QueryAPI       = (*services.QueryService)(nil)
	_ TransactionAPI = (*services.TransactionService)(nil)
	_ ItemAPI        = (*services.ItemService)(nil)
	_ SchoolAPI      = (*services.SchoolService)(nil)
)
