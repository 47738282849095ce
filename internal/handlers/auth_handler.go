package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/respond"
	"github.com/tuckshop/backend/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth      AuthAPI
	accounts  AccountAPI
	badges    BadgeRenderer
	validator *respond.ValidationHelper
	logger    *zap.Logger
}

func NewAuthHandler(authAPI AuthAPI, accounts AccountAPI, badges BadgeRenderer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      authAPI,
		accounts:  accounts,
		badges:    badges,
		validator: respond.NewValidationHelper(),
		logger:    logger,
	}
}

// RegisterRequest is a self-registration. Students sign in with studentId,
// parents with email.
type RegisterRequest struct {
	Name      string      `json:"name" validate:"required,max=100" example:"Ada Obi"`
	Role      models.Role `json:"role" validate:"required,oneof=student parent" example:"student"`
	Email     string      `json:"email,omitempty" validate:"omitempty,email,max=254"`
	StudentID string      `json:"studentId,omitempty" validate:"omitempty,max=50" example:"STU-0042"`
	Class     string      `json:"class,omitempty" validate:"omitempty,max=50"`
	SchoolID  *uuid.UUID  `json:"schoolId,omitempty" swaggertype:"string"`
	ParentID  *uuid.UUID  `json:"parentId,omitempty" swaggertype:"string"`
	Password  string      `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Identifier string      `json:"identifier" validate:"required,max=254" example:"parent@example.com"`
	Password   string      `json:"password" validate:"required,max=128"`
	Role       models.Role `json:"role,omitempty" validate:"omitempty,oneof=student parent admin"`
}

// Register creates a student or parent account
// @Summary Register
// @Description Self-registration for students and parents. Returns a signed token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} services.AuthResult
// @Failure 400 {object} respond.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}

	result, err := h.auth.Register(r.Context(), services.RegisterInput{
		AccountInput: models.AccountInput{
			Name:      req.Name,
			Role:      req.Role,
			Email:     req.Email,
			StudentID: req.StudentID,
			Class:     req.Class,
			SchoolID:  req.SchoolID,
			ParentID:  req.ParentID,
		},
		Password: req.Password,
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, result)
}

// Login authenticates by email or student ID
// @Summary Login
// @Description Identifiers containing '@' are matched against email, others against student ID.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} services.AuthResult
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Identifier, req.Password, req.Role)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// Logout revokes the current token
// @Summary Logout
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context(), principal(r))
	respond.JSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// Account returns the caller's account
// @Summary Current account
// @Description Parents also receive the ids of their children.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Account
// @Failure 401 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /auth/account [get]
func (h *AuthHandler) Account(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.Get(r.Context(), principal(r).AccountID)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, account)
}

// Badge renders the student's QR badge
// @Summary Student badge
// @Description PNG QR code scanned at the counter.
// @Tags Auth
// @Produce png
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 403 {object} respond.ErrorResponse
// @Router /auth/account/badge [get]
func (h *AuthHandler) Badge(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p.Role != models.RoleStudent {
		respond.Error(w, h.logger, apperrors.ErrForbidden.WithMessage("Only students have a badge"))
		return
	}

	account, err := h.accounts.Get(r.Context(), p.AccountID)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	png, err := h.badges.PNG(account)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
