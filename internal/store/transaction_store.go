package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
)

// TransactionFilter holds optional filter parameters for querying transactions.
type TransactionFilter struct {
	UserID   string
	WalletID *string
	Type     *models.TransactionType
	Category *string
	FromDate *time.Time
	ToDate   *time.Time
	Search   *string // matched against description
}

// Transactions is the transaction persistence contract.
type Transactions interface {
	Get(id string) (*models.Transaction, error)
	GetOwned(userID, id string) (*models.Transaction, error)
	Create(t *models.Transaction) error
	UpdateFields(id string, fields map[string]any) error
	Delete(id string) error
	DeleteByWallet(walletID string) error
	// Query returns transactions matching the filter ordered by date
	// descending. A nil page returns all matches; otherwise the slice is
	// the requested page and the count is the unpaginated total.
	Query(f TransactionFilter, page *pagination.PageRequest) ([]models.Transaction, int64, error)
}

type transactionStore struct {
	db *gorm.DB
}

// NewTransactions creates a GORM-backed transaction store.
func NewTransactions(db *gorm.DB) Transactions {
	return &transactionStore{db: db}
}

func (s *transactionStore) Get(id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return &transaction, nil
}

func (s *transactionStore) GetOwned(userID, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return &transaction, nil
}

func (s *transactionStore) Create(t *models.Transaction) error {
	if err := s.db.Create(t).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// UpdateFields merges the given fields into the transaction row. Only
// the provided keys change; omitted optional fields keep their values.
func (s *transactionStore) UpdateFields(id string, fields map[string]any) error {
	res := s.db.Model(&models.Transaction{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

func (s *transactionStore) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Transaction{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

func (s *transactionStore) DeleteByWallet(walletID string) error {
	if err := s.db.Where("wallet_id = ?", walletID).Delete(&models.Transaction{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *transactionStore) Query(f TransactionFilter, page *pagination.PageRequest) ([]models.Transaction, int64, error) {
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", f.UserID)
	base = applyTransactionFilters(base, f)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	q := base.Order("date DESC")
	if page != nil {
		page.Defaults()
		q = q.Scopes(pagination.Paginate(*page))
	}

	var transactions []models.Transaction
	if err := q.Find(&transactions).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return transactions, totalItems, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.WalletID != nil {
		q = q.Where("wallet_id = ?", *f.WalletID)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Search != nil && *f.Search != "" {
		q = q.Where("description LIKE ?", "%"+*f.Search+"%")
	}
	return q
}
