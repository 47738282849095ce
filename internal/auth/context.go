package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/models"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	AccountID uuid.UUID
	Role      models.Role
	TokenID   string
	ExpiresAt time.Time
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
