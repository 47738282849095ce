package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/tuckshop/backend/internal/auth"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
	"github.com/tuckshop/backend/internal/services"
)

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthAPI) Login(ctx context.Context, identifier, password string, role models.Role) (*services.AuthResult, error) {
	args := m.Called(ctx, identifier, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthAPI) Logout(ctx context.Context, p auth.Principal) {
	m.Called(ctx, p)
}

func (m *MockAuthAPI) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.Principal), args.Error(1)
}

type MockAccountAPI struct {
	mock.Mock
}

func (m *MockAccountAPI) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountAPI) Create(ctx context.Context, actor auth.Principal, in services.CreateAccountInput) (*models.Account, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountAPI) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, patch models.AccountPatch) (*models.Account, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountAPI) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockQueryAPI struct {
	mock.Mock
}

func (m *MockQueryAPI) Accounts(ctx context.Context, filter models.AccountFilter, page query.Page) (query.Result[models.Account], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(query.Result[models.Account]), args.Error(1)
}

func (m *MockQueryAPI) Items(ctx context.Context, filter models.ItemFilter, page query.Page) (query.Result[models.Item], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(query.Result[models.Item]), args.Error(1)
}

func (m *MockQueryAPI) Schools(ctx context.Context, page query.Page) (query.Result[models.School], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(query.Result[models.School]), args.Error(1)
}

type MockTransactionAPI struct {
	mock.Mock
}

func (m *MockTransactionAPI) Create(ctx context.Context, p auth.Principal, in services.CreateTransactionInput) (*models.Transaction, error) {
	args := m.Called(ctx, p, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionAPI) ListOwn(ctx context.Context, p auth.Principal, accountID *uuid.UUID, filter models.LedgerFilter, page query.Page) (query.Result[models.Transaction], error) {
	args := m.Called(ctx, p, accountID, filter, page)
	return args.Get(0).(query.Result[models.Transaction]), args.Error(1)
}

func (m *MockTransactionAPI) ListAll(ctx context.Context, p auth.Principal, filter models.LedgerFilter, page query.Page) (query.Result[models.Transaction], error) {
	args := m.Called(ctx, p, filter, page)
	return args.Get(0).(query.Result[models.Transaction]), args.Error(1)
}

func (m *MockTransactionAPI) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

type MockItemAPI struct {
	mock.Mock
}

func (m *MockItemAPI) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemAPI) Create(ctx context.Context, actor auth.Principal, item *models.Item) (*models.Item, error) {
	args := m.Called(ctx, actor, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemAPI) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, patch models.ItemPatch) (*models.Item, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemAPI) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockSchoolAPI struct {
	mock.Mock
}

func (m *MockSchoolAPI) Create(ctx context.Context, actor auth.Principal, name string) (*models.School, error) {
	args := m.Called(ctx, actor, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.School), args.Error(1)
}

type stubBadges struct{}

func (stubBadges) PNG(account *models.Account) ([]byte, error) {
	return []byte("\x89PNG\r\n\x1a\n"), nil
}
