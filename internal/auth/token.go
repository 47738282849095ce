package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/config"
	"github.com/tuckshop/backend/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims: sub is the account id, ID is the jti used
// for revocation.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret   []byte
	ttl      time.Duration
	adminTTL time.Duration
	now      func() time.Time
}

func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	return &TokenManager{
		secret:   []byte(cfg.SecretKey),
		ttl:      time.Duration(cfg.ExpiryHours) * time.Hour,
		adminTTL: time.Duration(cfg.AdminExpiryHours) * time.Hour,
		now:      time.Now,
	}
}

// TTL is the token lifetime for role. Admin tokens are shorter lived.
func (m *TokenManager) TTL(role models.Role) time.Duration {
	if role == models.RoleAdmin {
		return m.adminTTL
	}
	return m.ttl
}

func (m *TokenManager) Issue(accountID uuid.UUID, role models.Role) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL(role))),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature and expiry and returns the principal.
func (m *TokenManager) Parse(tokenString string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil || !claims.Role.Valid() || claims.ID == "" || claims.ExpiresAt == nil {
		return Principal{}, ErrInvalidToken
	}

	return Principal{
		AccountID: accountID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
