package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
	"github.com/tuckshop/backend/internal/respond"
	"github.com/tuckshop/backend/internal/services"
	"go.uber.org/zap"
)

// UserHandler is the admin account management surface.
type UserHandler struct {
	accounts  AccountAPI
	queries   QueryAPI
	validator *respond.ValidationHelper
	logger    *zap.Logger
}

func NewUserHandler(accounts AccountAPI, queries QueryAPI, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		accounts:  accounts,
		queries:   queries,
		validator: respond.NewValidationHelper(),
		logger:    logger,
	}
}

type CreateUserRequest struct {
	Name           string      `json:"name" validate:"required,max=100"`
	Role           models.Role `json:"role" validate:"required,oneof=student parent admin"`
	Email          string      `json:"email,omitempty" validate:"omitempty,email,max=254"`
	StudentID      string      `json:"studentId,omitempty" validate:"omitempty,max=50"`
	Class          string      `json:"class,omitempty" validate:"omitempty,max=50"`
	SchoolID       *uuid.UUID  `json:"schoolId,omitempty" swaggertype:"string"`
	ParentID       *uuid.UUID  `json:"parentId,omitempty" swaggertype:"string"`
	Password       string      `json:"password" validate:"required,min=6,max=128"`
	OpeningBalance int64       `json:"openingBalance,omitempty" validate:"gte=0" example:"5000"`
}

// UpdateUserRequest is a partial update; omitted or null fields are left
// unchanged.
type UpdateUserRequest struct {
	Name      *string    `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,email,max=254"`
	StudentID *string    `json:"studentId,omitempty" validate:"omitempty,min=1,max=50"`
	Class     *string    `json:"class,omitempty" validate:"omitempty,max=50"`
	SchoolID  *uuid.UUID `json:"schoolId,omitempty" swaggertype:"string"`
	ParentID  *uuid.UUID `json:"parentId,omitempty" swaggertype:"string"`
	Password  *string    `json:"password,omitempty" validate:"omitempty,min=6,max=128"`
}

// List returns accounts page by page
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role query string false "student, parent or admin"
// @Param search query string false "Case-insensitive name search"
// @Param schoolId query string false "School filter"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param sort query string false "name, createdAt, balance or role"
// @Param order query string false "asc or desc"
// @Success 200 {object} query.Result[models.Account]
// @Failure 400 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	page, err := query.Parse(values, query.AccountSort)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	schoolID, err := optionalUUID(values, "schoolId")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	result, err := h.queries.Accounts(r.Context(), models.AccountFilter{
		Role:     models.Role(values.Get("role")),
		Search:   values.Get("search"),
		SchoolID: schoolID,
	}, page)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// Create adds an account of any role
// @Summary Create user
// @Description A positive openingBalance is posted as a deposit.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "New account"
// @Success 201 {object} models.Account
// @Failure 400 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}

	account, err := h.accounts.Create(r.Context(), principal(r), services.CreateAccountInput{
		AccountInput: models.AccountInput{
			Name:      req.Name,
			Role:      req.Role,
			Email:     req.Email,
			StudentID: req.StudentID,
			Class:     req.Class,
			SchoolID:  req.SchoolID,
			ParentID:  req.ParentID,
		},
		Password:       req.Password,
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, account)
}

// Update patches an account
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} models.Account
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	var req UpdateUserRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}

	account, err := h.accounts.Update(r.Context(), principal(r), id, models.AccountPatch{
		Name:      req.Name,
		Email:     req.Email,
		StudentID: req.StudentID,
		Class:     req.Class,
		SchoolID:  req.SchoolID,
		ParentID:  req.ParentID,
		Password:  req.Password,
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, account)
}

// Delete removes an account
// @Summary Delete user
// @Description Children of a deleted parent are unlinked. Ledger history is kept.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	if err := h.accounts.Delete(r.Context(), principal(r), id); err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, MessageResponse{Message: "User removed"})
}
