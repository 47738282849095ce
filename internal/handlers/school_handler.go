package handlers

import (
	"net/http"

	"github.com/tuckshop/backend/internal/query"
	"github.com/tuckshop/backend/internal/respond"
	"go.uber.org/zap"
)

type SchoolHandler struct {
	schools   SchoolAPI
	queries   QueryAPI
	validator *respond.ValidationHelper
	logger    *zap.Logger
}

func NewSchoolHandler(schools SchoolAPI, queries QueryAPI, logger *zap.Logger) *SchoolHandler {
	return &SchoolHandler{
		schools:   schools,
		queries:   queries,
		validator: respond.NewValidationHelper(),
		logger:    logger,
	}
}

type CreateSchoolRequest struct {
	Name string `json:"name" validate:"required,max=150" example:"Greenfield Academy"`
}

// List returns schools
// @Summary List schools
// @Tags Schools
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param sort query string false "name or createdAt"
// @Param order query string false "asc or desc"
// @Success 200 {object} query.Result[models.School]
// @Failure 403 {object} respond.ErrorResponse
// @Router /schools [get]
func (h *SchoolHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := query.Parse(r.URL.Query(), query.SchoolSort)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	result, err := h.queries.Schools(r.Context(), page)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// Create adds a school
// @Summary Create school
// @Tags Schools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSchoolRequest true "New school"
// @Success 201 {object} models.School
// @Failure 400 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Router /schools [post]
func (h *SchoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSchoolRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}

	school, err := h.schools.Create(r.Context(), principal(r), req.Name)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, school)
}
