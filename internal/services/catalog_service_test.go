package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/auth"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
	"github.com/tuckshop/backend/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestItemService(t *testing.T) {
	ctx := context.Background()
	admin := auth.Principal{AccountID: uuid.New(), Role: models.RoleAdmin}

	t.Run("create trims name and logs the operation", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		items := new(MockItemRepository)
		service := NewItemService(items, new(MockSchoolRepository), NewAuditLogger(zap.New(core)))
		items.On("Create", mock.Anything, mock.MatchedBy(func(item *models.Item) bool {
			return item.Name == "Jollof rice"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Item).ID = uuid.New()
		}).Return(nil)

		item, err := service.Create(ctx, admin, &models.Item{Name: "  Jollof rice ", Price: 450})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, item.ID)

		entries := logs.FilterField(zap.String("operation", "ITEM_CREATED")).All()
		assert.Len(t, entries, 1)
	})

	t.Run("negative price", func(t *testing.T) {
		items := new(MockItemRepository)
		service := NewItemService(items, new(MockSchoolRepository), NewAuditLogger(zap.NewNop()))

		_, err := service.Create(ctx, admin, &models.Item{Name: "Water", Price: -1})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown school", func(t *testing.T) {
		schools := new(MockSchoolRepository)
		service := NewItemService(new(MockItemRepository), schools, NewAuditLogger(zap.NewNop()))
		school := uuid.New()
		schools.On("Get", mock.Anything, school).Return(nil, store.ErrNotFound)

		_, err := service.Create(ctx, admin, &models.Item{Name: "Water", Price: 100, SchoolID: &school})
		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "schoolId", appErr.Field)
	})

	t.Run("update and delete missing item", func(t *testing.T) {
		items := new(MockItemRepository)
		service := NewItemService(items, new(MockSchoolRepository), NewAuditLogger(zap.NewNop()))
		id := uuid.New()
		price := int64(500)
		items.On("Update", mock.Anything, id, models.ItemPatch{Price: &price}).Return(nil, store.ErrNotFound)
		items.On("Delete", mock.Anything, id).Return(store.ErrNotFound)

		_, err := service.Update(ctx, admin, id, models.ItemPatch{Price: &price})
		assert.True(t, errors.Is(err, apperrors.ErrItemNotFound))
		assert.True(t, errors.Is(service.Delete(ctx, admin, id), apperrors.ErrItemNotFound))
	})
}

func TestSchoolService(t *testing.T) {
	ctx := context.Background()
	admin := auth.Principal{AccountID: uuid.New(), Role: models.RoleAdmin}

	t.Run("create", func(t *testing.T) {
		schools := new(MockSchoolRepository)
		schools.On("Create", mock.Anything, "Hillside").Return(&models.School{ID: uuid.New(), Name: "Hillside"}, nil)

		school, err := NewSchoolService(schools, NewAuditLogger(zap.NewNop())).Create(ctx, admin, "Hillside")
		require.NoError(t, err)
		assert.Equal(t, "Hillside", school.Name)
	})

	t.Run("duplicate name", func(t *testing.T) {
		schools := new(MockSchoolRepository)
		schools.On("Create", mock.Anything, "Hillside").Return(nil, store.ErrDuplicate)

		_, err := NewSchoolService(schools, NewAuditLogger(zap.NewNop())).Create(ctx, admin, "Hillside")
		assert.True(t, errors.Is(err, apperrors.ErrDuplicateSchool))
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := NewSchoolService(new(MockSchoolRepository), NewAuditLogger(zap.NewNop())).Create(ctx, admin, "  ")
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})
}

func TestQueryService(t *testing.T) {
	ctx := context.Background()
	page := query.Page{Page: 1, PageSize: 10, Sort: "name", Order: query.Asc}

	t.Run("accounts reject unknown role", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		_, err := NewQueryService(accounts, nil, nil, nil).Accounts(ctx, models.AccountFilter{Role: "teacher"}, page)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		accounts.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("items empty page is an empty list", func(t *testing.T) {
		items := new(MockItemRepository)
		items.On("List", mock.Anything, models.ItemFilter{Category: "snacks"}, page).Return(nil, 0, nil)

		result, err := NewQueryService(nil, nil, items, nil).Items(ctx, models.ItemFilter{Category: "snacks"}, page)
		require.NoError(t, err)
		assert.NotNil(t, result.Items)
		assert.Empty(t, result.Items)
		assert.Equal(t, 0, result.TotalPages)
	})

	t.Run("ledger rejects unknown kind", func(t *testing.T) {
		_, err := NewQueryService(nil, new(MockLedgerRepository), nil, nil).Ledger(ctx, models.LedgerFilter{Kind: "transfer"}, page)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidKind))
	})

	t.Run("schools store failure", func(t *testing.T) {
		schools := new(MockSchoolRepository)
		schools.On("List", mock.Anything, page).Return(nil, 0, errors.New("connection reset"))

		_, err := NewQueryService(nil, nil, nil, schools).Schools(ctx, page)
		assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))
	})
}
