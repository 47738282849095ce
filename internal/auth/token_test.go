package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuckshop/backend/internal/config"
	"github.com/tuckshop/backend/internal/models"
)

func testTokens(now time.Time) *TokenManager {
	m := NewTokenManager(config.JWTConfig{SecretKey: "test-secret", ExpiryHours: 24, AdminExpiryHours: 8})
	m.now = func() time.Time { return now }
	return m
}

func TestTokenManager(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	m := testTokens(now)
	accountID := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		token, claims, err := m.Issue(accountID, models.RoleStudent)
		require.NoError(t, err)

		p, err := m.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, accountID, p.AccountID)
		assert.Equal(t, models.RoleStudent, p.Role)
		assert.Equal(t, claims.ID, p.TokenID)
		assert.True(t, now.Add(24*time.Hour).Equal(p.ExpiresAt))
	})

	t.Run("admin tokens are short lived", func(t *testing.T) {
		_, claims, err := m.Issue(accountID, models.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, now.Add(8*time.Hour).Equal(claims.ExpiresAt.Time))
	})

	t.Run("unique token ids", func(t *testing.T) {
		_, a, _ := m.Issue(accountID, models.RoleParent)
		_, b, _ := m.Issue(accountID, models.RoleParent)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("expired", func(t *testing.T) {
		token, _, err := m.Issue(accountID, models.RoleStudent)
		require.NoError(t, err)

		_, err = testTokens(now.Add(25 * time.Hour)).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager(config.JWTConfig{SecretKey: "other", ExpiryHours: 24})
		other.now = m.now
		token, _, err := other.Issue(accountID, models.RoleStudent)
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects none algorithm", func(t *testing.T) {
		claims := Claims{Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		claims := Claims{Role: "teacher", RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	p := Principal{AccountID: uuid.New(), Role: models.RoleAdmin}
	got, ok := PrincipalFrom(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.True(t, got.IsAdmin())
	assert.Equal(t, p.AccountID, got.AccountID)
}
