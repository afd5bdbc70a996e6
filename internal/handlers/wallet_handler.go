package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/services"
)

// WalletHandler handles wallet-related requests.
type WalletHandler struct {
	walletService services.WalletServicer
	auditService  services.AuditServicer
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletService services.WalletServicer, auditService services.AuditServicer) *WalletHandler {
	return &WalletHandler{walletService: walletService, auditService: auditService}
}

// CreateWalletRequest represents the wallet creation payload
type CreateWalletRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Image string `json:"image"`
}

// UpdateWalletRequest represents the wallet update payload. Omitted
// fields keep their values; clear_image removes the icon.
type UpdateWalletRequest struct {
	Name       *string `json:"name" binding:"omitempty,max=100"`
	Image      *string `json:"image"`
	ClearImage bool    `json:"clear_image"`
}

// CreateWallet creates a new wallet
// @Summary     Create wallet
// @Description Create a new wallet with zeroed balances
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateWalletRequest true "Wallet data"
// @Success     201 {object} ResultEnvelope "Created wallet"
// @Failure     400 {object} ResultEnvelope "Invalid input"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Router      /wallets [post]
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	wallet, err := h.walletService.CreateWallet(c.Request.Context(), userID, req.Name, req.Image)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "create", "wallet", wallet.ID, c.ClientIP(), nil)
	respondWithSuccess(c, http.StatusCreated, gin.H{"wallet": wallet})
}

// GetUserWallets lists the user's wallets
// @Summary     List wallets
// @Description List the authenticated user's wallets, newest first
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ResultEnvelope "Wallets"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Router      /wallets [get]
func (h *WalletHandler) GetUserWallets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	wallets, err := h.walletService.GetUserWallets(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, http.StatusOK, gin.H{"wallets": wallets})
}

// GetWalletByID retrieves a single wallet
// @Summary     Get wallet
// @Description Get a wallet owned by the authenticated user
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Wallet ID"
// @Success     200 {object} ResultEnvelope "Wallet"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Failure     404 {object} ResultEnvelope "Wallet not found"
// @Router      /wallets/{id} [get]
func (h *WalletHandler) GetWalletByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	wallet, err := h.walletService.GetWalletByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, http.StatusOK, gin.H{"wallet": wallet})
}

// UpdateWallet updates a wallet's display fields
// @Summary     Update wallet
// @Description Update a wallet's name or icon. Balances cannot be edited directly.
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Wallet ID"
// @Param       request body UpdateWalletRequest true "Wallet fields"
// @Success     200 {object} ResultEnvelope "Updated wallet"
// @Failure     400 {object} ResultEnvelope "Invalid input"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Failure     404 {object} ResultEnvelope "Wallet not found"
// @Router      /wallets/{id} [put]
func (h *WalletHandler) UpdateWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	walletID := c.Param("id")
	wallet, err := h.walletService.UpdateWallet(c.Request.Context(), userID, walletID, services.WalletPatch{
		Name:       req.Name,
		Image:      req.Image,
		ClearImage: req.ClearImage,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "update", "wallet", walletID, c.ClientIP(), nil)
	respondWithSuccess(c, http.StatusOK, gin.H{"wallet": wallet})
}

// DeleteWallet removes a wallet and its transactions
// @Summary     Delete wallet
// @Description Delete a wallet and every transaction recorded against it
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Wallet ID"
// @Success     200 {object} ResultEnvelope "Deleted"
// @Failure     401 {object} ResultEnvelope "Unauthorized"
// @Failure     404 {object} ResultEnvelope "Wallet not found"
// @Router      /wallets/{id} [delete]
func (h *WalletHandler) DeleteWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	walletID := c.Param("id")
	if err := h.walletService.DeleteWallet(userID, walletID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "delete", "wallet", walletID, c.ClientIP(), nil)
	respondWithSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
