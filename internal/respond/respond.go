// Package respond holds the JSON request and response helpers shared by the
// handlers and the middleware.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tuckshop/backend/internal/apperrors"
	"go.uber.org/zap"
)

const maxBodyBytes = 1_048_576

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Code    string            `json:"code,omitempty"`    // Stable error code
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper. Field names in
// validation details are the JSON names.
func NewValidationHelper() *ValidationHelper {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ValidationHelper{validator: v}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	errorResp := ErrorResponse{Error: message}

	var fieldErrs validator.ValidationErrors
	if errors.As(validationErr, &fieldErrs) {
		errorResp.Code = apperrors.ErrValidation.Code
		errorResp.Details = make(map[string]string, len(fieldErrs))
		for _, err := range fieldErrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	JSON(w, statusCode, errorResp)
}

// Error writes err as an ErrorResponse. Unavailable and internal errors are
// logged with their cause; the body only carries the generic message.
func Error(w http.ResponseWriter, logger *zap.Logger, err error) {
	appErr := apperrors.From(err)
	status := appErr.Status()
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", zap.String("code", appErr.Code), zap.Error(err))
	}

	resp := ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	if appErr.Field != "" {
		resp.Details = map[string]string{appErr.Field: appErr.Message}
	}
	JSON(w, status, resp)
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads exactly one JSON object into dst, rejecting unknown
// fields and bodies over 1MB.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return apperrors.Validation("body", "Invalid request body")
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return apperrors.Validation("body", "Request body must only contain a single JSON object")
	}
	return nil
}

// Bind decodes and validates a request body. It writes the error response
// itself and reports whether the handler should continue.
func (vh *ValidationHelper) Bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := DecodeJSON(w, r, dst); err != nil {
		Error(w, nil, err)
		return false
	}
	if err := vh.ValidateStruct(dst); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}
