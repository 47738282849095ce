// Package handlers is the HTTP boundary: request decoding, validation and
// the mapping of application errors to status codes.
package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/auth"
)

// MessageResponse is returned by endpoints with no resource to show.
type MessageResponse struct {
	Message string `json:"message" example:"Item removed"`
}

// principal is set by AuthMiddleware on every protected route.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFrom(r.Context())
	return p
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperrors.Validation(name, name+" must be a valid UUID")
	}
	return id, nil
}

func optionalUUID(values url.Values, key string) (*uuid.UUID, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.Validation(key, key+" must be a valid UUID")
	}
	return &id, nil
}
