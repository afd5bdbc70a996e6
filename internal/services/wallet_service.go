package services

import (
	"context"

	"github.com/shopspring/decimal"

	"spendwise/internal/blob"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
	"spendwise/internal/store"
)

// walletService handles wallet-related business logic.
type walletService struct {
	wallets      store.Wallets
	transactions store.Transactions
	uploader     blob.Uploader
}

// NewWalletService creates a new WalletServicer.
func NewWalletService(wallets store.Wallets, transactions store.Transactions, uploader blob.Uploader) WalletServicer {
	return &walletService{
		wallets:      wallets,
		transactions: transactions,
		uploader:     uploader,
	}
}

// CreateWallet creates a new wallet with zeroed balances.
func (s *walletService) CreateWallet(ctx context.Context, userID, name, image string) (*models.Wallet, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet name is required")
	}

	icon, err := s.resolveImage(ctx, image)
	if err != nil {
		return nil, err
	}

	wallet := &models.Wallet{
		UserID:        userID,
		Name:          name,
		Image:         icon,
		Amount:        decimal.Zero,
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	if err := s.wallets.Create(wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// UpdateWallet updates a wallet's display fields. Balances are never
// touched here; only the transaction service writes them.
func (s *walletService) UpdateWallet(ctx context.Context, userID, walletID string, patch WalletPatch) (*models.Wallet, error) {
	wallet, err := s.wallets.GetOwned(userID, walletID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet name is required")
		}
		fields["name"] = *patch.Name
	}
	if patch.ClearImage {
		fields["image"] = ""
	} else if patch.Image != nil {
		icon, err := s.resolveImage(ctx, *patch.Image)
		if err != nil {
			return nil, err
		}
		fields["image"] = icon
	}

	if len(fields) > 0 {
		if err := s.wallets.UpdateFields(wallet.ID, fields); err != nil {
			return nil, err
		}
	}
	return s.wallets.GetOwned(userID, walletID)
}

// GetUserWallets lists the user's wallets, newest first.
func (s *walletService) GetUserWallets(userID string) ([]models.Wallet, error) {
	return s.wallets.ListByUser(userID)
}

// GetWalletByID retrieves a wallet by ID for a specific user.
func (s *walletService) GetWalletByID(userID, walletID string) (*models.Wallet, error) {
	return s.wallets.GetOwned(userID, walletID)
}

// DeleteWallet removes a wallet and every transaction recorded against
// it. The wallet row goes first so a mid-sequence failure leaves
// orphaned transaction rows rather than a wallet with unaccounted
// balance effects.
func (s *walletService) DeleteWallet(userID, walletID string) error {
	wallet, err := s.wallets.GetOwned(userID, walletID)
	if err != nil {
		return err
	}

	if err := s.wallets.Delete(wallet.ID); err != nil {
		return err
	}
	if err := s.transactions.DeleteByWallet(wallet.ID); err != nil {
		logger.Get().Errorw("wallet deleted but cascading transaction delete failed",
			"user_id", userID,
			"wallet_id", wallet.ID,
		)
		return err
	}
	return nil
}

func (s *walletService) resolveImage(ctx context.Context, ref string) (string, error) {
	if ref == "" || blob.Resolved(ref) {
		return ref, nil
	}
	url, err := s.uploader.Upload(ctx, ref, "wallets")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrAttachmentUploadFailed, err)
	}
	return url, nil
}
