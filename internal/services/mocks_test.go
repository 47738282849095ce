package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/tuckshop/backend/internal/events"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishTransaction(ctx context.Context, event events.TransactionCompleted) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByIdentifier(ctx context.Context, kind models.IdentifierKind, value string) (*models.Account, error) {
	args := m.Called(ctx, kind, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, spec models.AccountSpec, passwordHash string) (*models.Account, error) {
	args := m.Called(ctx, spec, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, id uuid.UUID, patch models.AccountPatch) (*models.Account, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAccountRepository) List(ctx context.Context, filter models.AccountFilter, page query.Page) ([]models.Account, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Account), args.Int(1), args.Error(2)
}

func (m *MockAccountRepository) HasRole(ctx context.Context, role models.Role) (bool, error) {
	args := m.Called(ctx, role)
	return args.Bool(0), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) List(ctx context.Context, filter models.LedgerFilter, page query.Page) ([]models.Transaction, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Transaction), args.Int(1), args.Error(2)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Update(ctx context.Context, id uuid.UUID, patch models.ItemPatch) (*models.Item, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemRepository) List(ctx context.Context, filter models.ItemFilter, page query.Page) ([]models.Item, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Item), args.Int(1), args.Error(2)
}

type MockSchoolRepository struct {
	mock.Mock
}

func (m *MockSchoolRepository) Create(ctx context.Context, name string) (*models.School, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.School), args.Error(1)
}

func (m *MockSchoolRepository) Get(ctx context.Context, id uuid.UUID) (*models.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.School), args.Error(1)
}

func (m *MockSchoolRepository) List(ctx context.Context, page query.Page) ([]models.School, int, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.School), args.Int(1), args.Error(2)
}

type MockBlacklist struct {
	mock.Mock
}

func (m *MockBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return m.Called(ctx, tokenID, expiresAt).Error(0)
}

func (m *MockBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
