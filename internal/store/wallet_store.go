// Package store contains the persistence adapters for wallets and
// transactions. Services depend on the interfaces, not the GORM
// implementations, so the ledger flow is testable against fakes.
package store

import (
	"errors"

	"gorm.io/gorm"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/ledger"
	"spendwise/internal/models"
)

// Wallets is the wallet persistence contract.
type Wallets interface {
	Get(id string) (*models.Wallet, error)
	GetOwned(userID, id string) (*models.Wallet, error)
	ListByUser(userID string) ([]models.Wallet, error)
	Create(w *models.Wallet) error
	UpdateFields(id string, fields map[string]any) error
	// UpdateBalance writes the balance triple with an optimistic version
	// check. Returns ErrWalletConflict if the row changed since w was
	// loaded. On success w reflects the written balance and new version.
	UpdateBalance(w *models.Wallet, b ledger.Balance) error
	Delete(id string) error
}

type walletStore struct {
	db *gorm.DB
}

// NewWallets creates a GORM-backed wallet store.
func NewWallets(db *gorm.DB) Wallets {
	return &walletStore{db: db}
}

func (s *walletStore) Get(id string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.Where("id = ?", id).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return &wallet, nil
}

func (s *walletStore) GetOwned(userID, id string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return &wallet, nil
}

func (s *walletStore) ListByUser(userID string) ([]models.Wallet, error) {
	var wallets []models.Wallet
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&wallets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return wallets, nil
}

func (s *walletStore) Create(w *models.Wallet) error {
	if err := s.db.Create(w).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// UpdateFields merges the given fields into the wallet row. Only the
// provided keys change.
func (s *walletStore) UpdateFields(id string, fields map[string]any) error {
	res := s.db.Model(&models.Wallet{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrWalletNotFound
	}
	return nil
}

func (s *walletStore) UpdateBalance(w *models.Wallet, b ledger.Balance) error {
	res := s.db.Model(&models.Wallet{}).
		Where("id = ? AND version = ?", w.ID, w.Version).
		Updates(map[string]any{
			"amount":         b.Amount,
			"total_income":   b.TotalIncome,
			"total_expenses": b.TotalExpenses,
			"version":        w.Version + 1,
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the wallet is gone or another writer got there first.
		var count int64
		if err := s.db.Model(&models.Wallet{}).Where("id = ?", w.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
		}
		if count == 0 {
			return apperrors.ErrWalletNotFound
		}
		return apperrors.ErrWalletConflict
	}

	w.Amount = b.Amount
	w.TotalIncome = b.TotalIncome
	w.TotalExpenses = b.TotalExpenses
	w.Version++
	return nil
}

func (s *walletStore) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Wallet{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrWalletNotFound
	}
	return nil
}
