package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/store"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.User, error)
}

// ProfilePatch holds the optional profile fields of an update. A nil
// field is left untouched.
type ProfilePatch struct {
	Name  *string
	Image *string // pending local reference or resolved URL
}

// WalletPatch holds the optional fields of a wallet update. A nil field
// is left untouched; ClearImage removes the icon.
type WalletPatch struct {
	Name       *string
	Image      *string
	ClearImage bool
}

// WalletServicer defines the contract for wallet-related business logic.
type WalletServicer interface {
	CreateWallet(ctx context.Context, userID, name, image string) (*models.Wallet, error)
	UpdateWallet(ctx context.Context, userID, walletID string, patch WalletPatch) (*models.Wallet, error)
	GetUserWallets(userID string) ([]models.Wallet, error)
	GetWalletByID(userID, walletID string) (*models.Wallet, error)
	DeleteWallet(userID, walletID string) error
}

// TransactionInput carries the fields of a new transaction.
type TransactionInput struct {
	WalletID    string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Category    string
	Date        time.Time
	Description string
	Image       string // pending local reference or resolved URL
}

// TransactionPatch holds the optional fields of a transaction update.
// A nil field is left untouched, so "not provided" and "explicitly
// cleared" stay distinguishable. Changing Type, Amount, or WalletID
// makes the update effect-changing and triggers balance recomputation.
type TransactionPatch struct {
	WalletID    *string
	Type        *models.TransactionType
	Amount      *decimal.Decimal
	Category    *string
	Date        *time.Time
	Description *string
	Image       *string
	ClearImage  bool
}

// TransactionServicer defines the contract for the wallet ledger flow:
// every balance-affecting mutation goes through these three operations.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, patch TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter store.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// PeriodStat is one chart bucket with summed income and expense.
type PeriodStat struct {
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// StatsServicer defines the contract for income/expense aggregation.
type StatsServicer interface {
	WeeklyStats(userID string) ([]PeriodStat, []models.Transaction, error)
	MonthlyStats(userID string) ([]PeriodStat, []models.Transaction, error)
	YearlyStats(userID string) ([]PeriodStat, []models.Transaction, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
