package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
	"github.com/tuckshop/backend/internal/respond"
	"go.uber.org/zap"
)

type ItemHandler struct {
	items     ItemAPI
	queries   QueryAPI
	validator *respond.ValidationHelper
	logger    *zap.Logger
}

func NewItemHandler(items ItemAPI, queries QueryAPI, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		items:     items,
		queries:   queries,
		validator: respond.NewValidationHelper(),
		logger:    logger,
	}
}

type CreateItemRequest struct {
	Name        string     `json:"name" validate:"required,max=100" example:"Meat pie"`
	Price       int64      `json:"price" validate:"gte=0" example:"500"`
	Description string     `json:"description,omitempty" validate:"max=500"`
	ImageURL    string     `json:"imageUrl,omitempty" validate:"max=255"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,max=50"`
	SchoolID    *uuid.UUID `json:"schoolId,omitempty" swaggertype:"string"`
}

type UpdateItemRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Price       *int64     `json:"price,omitempty" validate:"omitempty,gte=0"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	ImageURL    *string    `json:"imageUrl,omitempty" validate:"omitempty,max=255"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,max=50"`
	SchoolID    *uuid.UUID `json:"schoolId,omitempty" swaggertype:"string"`
}

// List returns the menu
// @Summary List items
// @Tags Items
// @Produce json
// @Param search query string false "Case-insensitive name search"
// @Param category query string false "Category filter"
// @Param schoolId query string false "School filter"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param sort query string false "name, price or createdAt"
// @Param order query string false "asc or desc"
// @Success 200 {object} query.Result[models.Item]
// @Failure 400 {object} respond.ErrorResponse
// @Router /items [get]
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	page, err := query.Parse(values, query.ItemSort)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	schoolID, err := optionalUUID(values, "schoolId")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	result, err := h.queries.Items(r.Context(), models.ItemFilter{
		Search:   values.Get("search"),
		Category: values.Get("category"),
		SchoolID: schoolID,
	}, page)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// Get returns one item
// @Summary Get item
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.Item
// @Failure 404 {object} respond.ErrorResponse
// @Router /items/{id} [get]
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	item, err := h.items.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, item)
}

// Create adds an item to the menu
// @Summary Create item
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateItemRequest true "New item"
// @Success 201 {object} models.Item
// @Failure 400 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Router /items [post]
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}

	item, err := h.items.Create(r.Context(), principal(r), &models.Item{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		SchoolID:    req.SchoolID,
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, item)
}

// Update patches an item
// @Summary Update item
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param request body UpdateItemRequest true "Fields to change"
// @Success 200 {object} models.Item
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /items/{id} [put]
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	var req UpdateItemRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}

	item, err := h.items.Update(r.Context(), principal(r), id, models.ItemPatch{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		SchoolID:    req.SchoolID,
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, item)
}

// Delete removes an item
// @Summary Delete item
// @Description Past purchases keep their captured name and price.
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /items/{id} [delete]
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	if err := h.items.Delete(r.Context(), principal(r), id); err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, MessageResponse{Message: "Item removed"})
}
