package models

import "github.com/shopspring/decimal"

// Wallet represents a cash account with a running balance and cumulative
// income/expense totals. Amount always equals TotalIncome - TotalExpenses
// after a successful mutation; the transaction service is the sole writer
// responsible for keeping that true.
type Wallet struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string          `gorm:"not null" json:"name"`
	Image         string          `json:"image,omitempty"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	TotalIncome   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_income"`
	TotalExpenses decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_expenses"`

	// Version is bumped on every balance write. Balance updates are
	// compare-and-swap on this column so concurrent mutations cannot
	// silently lose an update.
	Version int64 `gorm:"not null;default:0" json:"-"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:WalletID" json:"transactions,omitempty"`
}
