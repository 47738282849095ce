package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/auth"
	"github.com/tuckshop/backend/internal/config"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/store"
	"go.uber.org/zap"
)

func testHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(config.Argon2Config{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLength: 32, SaltLength: 16})
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(config.JWTConfig{SecretKey: "test-secret", ExpiryHours: 24, AdminExpiryHours: 8})
}

type authFixture struct {
	accounts  *MockAccountRepository
	schools   *MockSchoolRepository
	blacklist *MockBlacklist
	hasher    *auth.PasswordHasher
	tokens    *auth.TokenManager
	service   *AuthService
}

func newAuthFixture() *authFixture {
	accounts := new(MockAccountRepository)
	schools := new(MockSchoolRepository)
	blacklist := new(MockBlacklist)
	hasher := testHasher()
	tokens := testTokens()
	audit := NewAuditLogger(zap.NewNop())
	engine := NewEngine(newMemoryStore(), nil, audit, zap.NewNop())
	creator := NewAccountService(accounts, schools, hasher, engine, audit, zap.NewNop())
	return &authFixture{
		accounts:  accounts,
		schools:   schools,
		blacklist: blacklist,
		hasher:    hasher,
		tokens:    tokens,
		service:   NewAuthService(accounts, creator, hasher, tokens, blacklist, zap.NewNop()),
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("student registers and is signed in", func(t *testing.T) {
		f := newAuthFixture()
		id := uuid.New()
		studentID := "STU-001"
		f.accounts.On("Create", mock.Anything, mock.MatchedBy(func(spec models.AccountSpec) bool {
			return spec.Role() == models.RoleStudent && *spec.Fields().StudentID == studentID
		}), mock.AnythingOfType("string")).Return(&models.Account{ID: id, Name: "Ada", Role: models.RoleStudent, StudentID: &studentID}, nil)

		result, err := f.service.Register(ctx, RegisterInput{
			AccountInput: models.AccountInput{Name: "Ada", Role: models.RoleStudent, StudentID: studentID},
			Password:     "secret123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, id, result.User.ID)

		p, err := f.tokens.Parse(result.Token)
		require.NoError(t, err)
		assert.Equal(t, id, p.AccountID)
		assert.Equal(t, models.RoleStudent, p.Role)
	})

	t.Run("admin cannot self-register", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.service.Register(ctx, RegisterInput{
			AccountInput: models.AccountInput{Name: "Root", Role: models.RoleAdmin, Email: "root@school.test"},
			Password:     "secret123",
		})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		f.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate identifier", func(t *testing.T) {
		f := newAuthFixture()
		f.accounts.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, store.ErrDuplicate)

		_, err := f.service.Register(ctx, RegisterInput{
			AccountInput: models.AccountInput{Name: "Grace", Role: models.RoleParent, Email: "grace@school.test"},
			Password:     "secret123",
		})
		assert.True(t, errors.Is(err, apperrors.ErrDuplicateIdentifier))
	})

	t.Run("student with unknown parent", func(t *testing.T) {
		f := newAuthFixture()
		parent := uuid.New()
		f.accounts.On("Get", mock.Anything, parent).Return(nil, store.ErrNotFound)

		_, err := f.service.Register(ctx, RegisterInput{
			AccountInput: models.AccountInput{Name: "Ada", Role: models.RoleStudent, StudentID: "STU-002", ParentID: &parent},
			Password:     "secret123",
		})
		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "parentId", appErr.Field)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong password and unknown identifier look the same", func(t *testing.T) {
		f := newAuthFixture()
		hash, err := f.hasher.Hash("correct-horse")
		require.NoError(t, err)
		f.accounts.On("FindByIdentifier", mock.Anything, models.IdentifierEmail, "grace@school.test").
			Return(&models.Account{ID: uuid.New(), Role: models.RoleParent, PasswordHash: hash}, nil)
		f.accounts.On("FindByIdentifier", mock.Anything, models.IdentifierEmail, "nobody@school.test").
			Return(nil, store.ErrNotFound)

		_, wrongPassword := f.service.Login(ctx, "grace@school.test", "battery-staple", "")
		_, unknown := f.service.Login(ctx, "nobody@school.test", "battery-staple", "")

		require.Error(t, wrongPassword)
		require.Error(t, unknown)
		assert.Equal(t, wrongPassword.Error(), unknown.Error())
		assert.Equal(t, apperrors.ErrInvalidCredentials.Status(), apperrors.From(unknown).Status())
	})

	t.Run("role mismatch is rejected", func(t *testing.T) {
		f := newAuthFixture()
		hash, _ := f.hasher.Hash("secret123")
		f.accounts.On("FindByIdentifier", mock.Anything, models.IdentifierStudentID, "STU-001").
			Return(&models.Account{ID: uuid.New(), Role: models.RoleStudent, PasswordHash: hash}, nil)

		_, err := f.service.Login(ctx, "STU-001", "secret123", models.RoleAdmin)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
	})

	t.Run("parent login carries children", func(t *testing.T) {
		f := newAuthFixture()
		hash, _ := f.hasher.Hash("secret123")
		id, child := uuid.New(), uuid.New()
		f.accounts.On("FindByIdentifier", mock.Anything, models.IdentifierEmail, "grace@school.test").
			Return(&models.Account{ID: id, Role: models.RoleParent, PasswordHash: hash}, nil)
		f.accounts.On("Get", mock.Anything, id).
			Return(&models.Account{ID: id, Role: models.RoleParent, Children: []uuid.UUID{child}}, nil)

		result, err := f.service.Login(ctx, "grace@school.test", "secret123", models.RoleParent)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{child}, result.User.Children)
		assert.Empty(t, result.User.PasswordHash)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), result.ExpiresAt, time.Minute)
	})

	t.Run("unknown identifier pays for a full hash check", func(t *testing.T) {
		f := newAuthFixture()
		assert.Equal(t, f.hasher.Dummy(), f.service.dummyHash)
		assert.NotEmpty(t, f.service.dummyHash)
	})

	t.Run("password reset by an admin is used at login", func(t *testing.T) {
		f := newAuthFixture()
		admin := auth.Principal{AccountID: uuid.New(), Role: models.RoleAdmin}
		accounts := NewAccountService(f.accounts, f.schools, f.hasher, nil, NewAuditLogger(zap.NewNop()), zap.NewNop())

		id := uuid.New()
		oldHash, _ := f.hasher.Hash("old-secret")
		student := &models.Account{ID: id, Role: models.RoleStudent, PasswordHash: oldHash}
		f.accounts.On("Get", mock.Anything, id).Return(student, nil)
		f.accounts.On("Update", mock.Anything, id, mock.Anything).Run(func(args mock.Arguments) {
			student.PasswordHash = *args.Get(2).(models.AccountPatch).PasswordHash
		}).Return(student, nil)
		f.accounts.On("FindByIdentifier", mock.Anything, models.IdentifierStudentID, "STU-7").
			Return(student, nil)

		newPassword := "new-secret"
		_, err := accounts.Update(ctx, admin, id, models.AccountPatch{Password: &newPassword})
		require.NoError(t, err)

		_, err = f.service.Login(ctx, "STU-7", "old-secret", "")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

		result, err := f.service.Login(ctx, "STU-7", "new-secret", models.RoleStudent)
		require.NoError(t, err)
		assert.Equal(t, id, result.User.ID)
	})

	t.Run("store outage is not reported as bad credentials", func(t *testing.T) {
		f := newAuthFixture()
		f.accounts.On("FindByIdentifier", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		_, err := f.service.Login(ctx, "grace@school.test", "secret123", "")
		assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))
	})
}

func TestAuthService_TokenLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("revoked token is rejected", func(t *testing.T) {
		f := newAuthFixture()
		token, claims, err := f.tokens.Issue(uuid.New(), models.RoleStudent)
		require.NoError(t, err)
		f.blacklist.On("IsRevoked", mock.Anything, claims.ID).Return(true, nil)

		_, err = f.service.Authenticate(ctx, token)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
	})

	t.Run("blacklist outage accepts the token", func(t *testing.T) {
		f := newAuthFixture()
		id := uuid.New()
		token, claims, err := f.tokens.Issue(id, models.RoleParent)
		require.NoError(t, err)
		f.blacklist.On("IsRevoked", mock.Anything, claims.ID).Return(false, errors.New("redis down"))

		p, err := f.service.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, id, p.AccountID)
	})

	t.Run("garbage token", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.service.Authenticate(ctx, "not.a.token")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
		f.blacklist.AssertNotCalled(t, "IsRevoked", mock.Anything, mock.Anything)
	})

	t.Run("logout revokes by token id", func(t *testing.T) {
		f := newAuthFixture()
		p := auth.Principal{AccountID: uuid.New(), Role: models.RoleStudent, TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}
		f.blacklist.On("Revoke", mock.Anything, "jti-1", p.ExpiresAt).Return(errors.New("redis down"))

		f.service.Logout(ctx, p)
		f.blacklist.AssertExpectations(t)
	})
}

func TestAuthService_BootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	cfg := config.BootstrapConfig{AdminName: "Admin", AdminEmail: "Admin@School.test", AdminPassword: "changeme"}

	t.Run("creates admin when none exists", func(t *testing.T) {
		f := newAuthFixture()
		f.accounts.On("HasRole", mock.Anything, models.RoleAdmin).Return(false, nil)
		f.accounts.On("Create", mock.Anything, mock.MatchedBy(func(spec models.AccountSpec) bool {
			return spec.Role() == models.RoleAdmin && *spec.Fields().Email == "admin@school.test"
		}), mock.AnythingOfType("string")).Return(&models.Account{ID: uuid.New(), Role: models.RoleAdmin}, nil)

		require.NoError(t, f.service.BootstrapAdmin(ctx, cfg))
		f.accounts.AssertExpectations(t)
	})

	t.Run("existing admin is left alone", func(t *testing.T) {
		f := newAuthFixture()
		f.accounts.On("HasRole", mock.Anything, models.RoleAdmin).Return(true, nil)

		require.NoError(t, f.service.BootstrapAdmin(ctx, cfg))
		f.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not configured", func(t *testing.T) {
		f := newAuthFixture()
		require.NoError(t, f.service.BootstrapAdmin(ctx, config.BootstrapConfig{}))
		f.accounts.AssertNotCalled(t, "HasRole", mock.Anything, mock.Anything)
	})
}
