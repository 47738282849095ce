package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/auth"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/respond"
)

// Authenticator resolves a bearer token to the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
}

// AuthMiddleware rejects requests without a valid, unrevoked bearer token
// and stores the principal in the request context.
func AuthMiddleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respond.Error(w, nil, apperrors.ErrInvalidToken.WithMessage("Authorization header required"))
				return
			}

			p, err := a.Authenticate(r.Context(), token)
			if err != nil {
				respond.Error(w, nil, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFrom(r.Context())
			if !ok {
				respond.Error(w, nil, apperrors.ErrInvalidToken)
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respond.Error(w, nil, apperrors.ErrForbidden)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
