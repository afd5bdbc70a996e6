package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the two supported types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction represents a single income or expense event of positive
// magnitude affecting exactly one wallet. Amount is always positive;
// the sign of the wallet effect is derived from Type.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	WalletID    string          `gorm:"type:uuid;not null;index" json:"wallet_id"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category    string          `json:"category,omitempty"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`

	// Relationships
	Wallet Wallet `gorm:"foreignKey:WalletID" json:"wallet,omitempty"`
}
