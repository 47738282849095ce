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

type TransactionHandler struct {
	transactions TransactionAPI
	validator    *respond.ValidationHelper
	logger       *zap.Logger
}

func NewTransactionHandler(transactions TransactionAPI, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		validator:    respond.NewValidationHelper(),
		logger:       logger,
	}
}

type LineItemRequest struct {
	ItemID   uuid.UUID `json:"itemId" swaggertype:"string"`
	Quantity int       `json:"quantity" example:"2"`
}

// CreateTransactionRequest posts a balance change. accountId defaults to the
// caller.
type CreateTransactionRequest struct {
	AccountID   *uuid.UUID             `json:"accountId,omitempty" swaggertype:"string"`
	Kind        models.TransactionKind `json:"kind" validate:"required" example:"purchase"`
	Amount      int64                  `json:"amount" example:"1000"`
	Description string                 `json:"description,omitempty" validate:"max=255"`
	Items       []LineItemRequest      `json:"items,omitempty"`
}

// Create posts a deposit, purchase or refund
// @Summary Create transaction
// @Description Students may purchase for themselves, parents may deposit or purchase for themselves and their children, admins may do anything including refunds.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "Transaction request"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}

	lines := make([]models.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, models.LineItem{ItemID: it.ItemID, Quantity: it.Quantity})
	}

	tx, err := h.transactions.Create(r.Context(), principal(r), services.CreateTransactionInput{
		AccountID:   req.AccountID,
		Kind:        req.Kind,
		Amount:      req.Amount,
		Description: req.Description,
		Items:       lines,
	})
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, tx)
}

// ListOwn returns the caller's ledger
// @Summary List own transactions
// @Description Parents may pass a child's accountId.
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param accountId query string false "Child account (parents only)"
// @Param kind query string false "deposit, purchase or refund"
// @Param status query string false "pending, completed or failed"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param sort query string false "createdAt or amount"
// @Param order query string false "asc or desc"
// @Success 200 {object} query.Result[models.Transaction]
// @Failure 400 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	filter, accountID, page, err := ledgerQuery(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	result, err := h.transactions.ListOwn(r.Context(), principal(r), accountID, filter, page)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// ListAll returns every ledger entry
// @Summary List all transactions
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param accountId query string false "Account filter"
// @Param kind query string false "deposit, purchase or refund"
// @Param status query string false "pending, completed or failed"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param sort query string false "createdAt or amount"
// @Param order query string false "asc or desc"
// @Success 200 {object} query.Result[models.Transaction]
// @Failure 403 {object} respond.ErrorResponse
// @Router /transactions/all [get]
func (h *TransactionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	filter, accountID, page, err := ledgerQuery(r)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	filter.AccountID = accountID

	result, err := h.transactions.ListAll(r.Context(), principal(r), filter, page)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// Get returns one ledger entry
// @Summary Get transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} respond.ErrorResponse
// @Router /transactions/{id} [get]
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}

	tx, err := h.transactions.Get(r.Context(), principal(r), id)
	if err != nil {
		respond.Error(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, tx)
}

func ledgerQuery(r *http.Request) (models.LedgerFilter, *uuid.UUID, query.Page, error) {
	values := r.URL.Query()
	page, err := query.Parse(values, query.LedgerSort)
	if err != nil {
		return models.LedgerFilter{}, nil, query.Page{}, err
	}
	accountID, err := optionalUUID(values, "accountId")
	if err != nil {
		return models.LedgerFilter{}, nil, query.Page{}, err
	}
	filter := models.LedgerFilter{
		Kind:   models.TransactionKind(values.Get("kind")),
		Status: models.TransactionStatus(values.Get("status")),
	}
	return filter, accountID, page, nil
}
