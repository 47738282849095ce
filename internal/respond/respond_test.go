package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuckshop/backend/internal/apperrors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type loginBody struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required,min=6"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestBind(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"identifier":"STU-1","password":"secret123"}`))
		rec := httptest.NewRecorder()

		var body loginBody
		assert.True(t, vh.Bind(rec, req, &body))
		assert.Equal(t, "STU-1", body.Identifier)
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"identifier":"a","password":"secret123","admin":true}`))
		rec := httptest.NewRecorder()

		var body loginBody
		assert.False(t, vh.Bind(rec, req, &body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", decodeError(t, rec).Error)
	})

	t.Run("trailing object", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"identifier":"a","password":"secret123"}{}`))
		rec := httptest.NewRecorder()

		var body loginBody
		assert.False(t, vh.Bind(rec, req, &body))
		assert.Equal(t, "Request body must only contain a single JSON object", decodeError(t, rec).Error)
	})

	t.Run("validation details use json names", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"password":"abc"}`))
		rec := httptest.NewRecorder()

		var body loginBody
		assert.False(t, vh.Bind(rec, req, &body))
		resp := decodeError(t, rec)
		assert.Equal(t, "VALIDATION_FAILED", resp.Code)
		assert.Equal(t, "Field Validation Failed on 'required' tag", resp.Details["identifier"])
		assert.Equal(t, "Field Validation Failed on 'min' tag", resp.Details["password"])
	})
}

func TestError(t *testing.T) {
	t.Run("app error keeps code and field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Error(rec, zap.NewNop(), apperrors.Validation("parentId", "parentId must reference a parent account"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "VALIDATION_FAILED", resp.Code)
		assert.Equal(t, "parentId must reference a parent account", resp.Details["parentId"])
	})

	t.Run("insufficient funds", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Error(rec, zap.NewNop(), apperrors.ErrInsufficientFunds)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INSUFFICIENT_FUNDS", decodeError(t, rec).Code)
	})

	t.Run("unknown errors are logged and hidden", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		rec := httptest.NewRecorder()
		Error(rec, zap.New(core), errors.New("pq: password authentication failed"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pq:")
		assert.Equal(t, "An Internal Error Occurred", decodeError(t, rec).Error)
		assert.Equal(t, 1, logs.Len())
	})
}
