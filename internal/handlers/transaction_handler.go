package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/services"
	"spendwise/internal/store"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the transaction creation payload.
// Amount accepts a JSON number or string and is kept exact.
type CreateTransactionRequest struct {
	WalletID    string          `json:"wallet_id" binding:"required"`
	Type        string          `json:"type" binding:"required,transaction_type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" binding:"omitempty,expense_category"`
	Date        string          `json:"date"`
	Description string          `json:"description" binding:"max=500"`
	Image       string          `json:"image"`
}

// UpdateTransactionRequest represents the transaction update payload.
// Omitted fields keep their values; clear_image removes the receipt.
type UpdateTransactionRequest struct {
	WalletID    *string          `json:"wallet_id"`
	Type        *string          `json:"type" binding:"omitempty,transaction_type"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category" binding:"omitempty,expense_category"`
	Date        *string          `json:"date"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Image       *string          `json:"image"`
	ClearImage  bool             `json:"clear_image"`
}

// ListTransactionsQuery represents the list endpoint's filter parameters.
type ListTransactionsQuery struct {
	pagination.PageRequest
	WalletID string `form:"wallet_id"`
	Type     string `form:"type" binding:"omitempty,transaction_type"`
	Category string `form:"category" binding:"omitempty,expense_category"`
	From     string `form:"from"`
	To       string `form:"to"`
	Search   string `form:"search"`
}

// CreateTransaction records a new transaction
// @Summary     Create transaction
// @Description Record an income or expense against a wallet
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction data"
// @Success     201 {object} ResultEnvelope "Created transaction"
// @Failure     400 {object} ResultEnvelope "Invalid input or insufficient balance"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Failure     404 {object} ResultEnvelope "Wallet not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.TransactionInput{
		WalletID:    req.WalletID,
		Type:        models.TransactionType(req.Type),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Image:       req.Image,
	}
	if req.Date != "" {
		date, err := parseFlexibleTime(req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date format"))
			return
		}
		in.Date = date
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "create", "transaction", transaction.ID, c.ClientIP(), nil)
	respondWithSuccess(c, http.StatusCreated, gin.H{"transaction": transaction})
}

// UpdateTransaction edits a transaction
// @Summary     Update transaction
// @Description Edit a transaction. Changes to type, amount, or wallet recompute wallet balances.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Transaction fields"
// @Success     200 {object} ResultEnvelope "Updated transaction"
// @Failure     400 {object} ResultEnvelope "Invalid input or insufficient balance"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Failure     404 {object} ResultEnvelope "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	patch := services.TransactionPatch{
		WalletID:    req.WalletID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Image:       req.Image,
		ClearImage:  req.ClearImage,
	}
	if req.Type != nil {
		txType := models.TransactionType(*req.Type)
		patch.Type = &txType
	}
	if req.Date != nil {
		date, err := parseFlexibleTime(*req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date format"))
			return
		}
		patch.Date = &date
	}

	transactionID := c.Param("id")
	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, transactionID, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "update", "transaction", transactionID, c.ClientIP(), nil)
	respondWithSuccess(c, http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a transaction
// @Summary     Delete transaction
// @Description Delete a transaction and revert its effect on the wallet balance
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} ResultEnvelope "Deleted"
// @Failure     400 {object} ResultEnvelope "Deletion would leave the wallet negative"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Failure     404 {object} ResultEnvelope "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")
	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "delete", "transaction", transactionID, c.ClientIP(), nil)
	respondWithSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// GetTransactionByID retrieves a single transaction
// @Summary     Get transaction
// @Description Get a transaction owned by the authenticated user
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} ResultEnvelope "Transaction"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Failure     404 {object} ResultEnvelope "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, http.StatusOK, gin.H{"transaction": transaction})
}

// GetUserTransactions lists the user's transactions
// @Summary     List transactions
// @Description List the authenticated user's transactions, newest first, with optional filters
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       wallet_id query string false "Filter by wallet"
// @Param       type query string false "Filter by type (income or expense)"
// @Param       category query string false "Filter by expense category"
// @Param       from query string false "Earliest date (RFC 3339 or YYYY-MM-DD)"
// @Param       to query string false "Latest date (RFC 3339 or YYYY-MM-DD)"
// @Param       search query string false "Match against description"
// @Success     200 {object} ResultEnvelope "Paginated transactions"
// @Failure     400 {object} ResultEnvelope "Invalid input"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := store.TransactionFilter{}
	if query.WalletID != "" {
		filter.WalletID = &query.WalletID
	}
	if query.Type != "" {
		txType := models.TransactionType(query.Type)
		filter.Type = &txType
	}
	if query.Category != "" {
		filter.Category = &query.Category
	}
	if query.From != "" {
		from, err := parseFlexibleTime(query.From)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid from date"))
			return
		}
		filter.FromDate = &from
	}
	if query.To != "" {
		to, err := parseFlexibleTime(query.To)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid to date"))
			return
		}
		filter.ToDate = &to
	}
	if query.Search != "" {
		filter.Search = &query.Search
	}

	page, err := h.transactionService.GetUserTransactions(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, http.StatusOK, page)
}
