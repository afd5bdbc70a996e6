// Package ledger holds the pure balance arithmetic for wallets.
//
// Apply and Revert are exact inverses and never touch storage: the
// transaction service loads wallet snapshots, runs these functions
// speculatively, validates the results, and only then writes. Amounts
// are decimals, not floats, so totals cannot drift across long
// transaction histories.
package ledger

import (
	"github.com/shopspring/decimal"

	"spendwise/internal/models"
)

// Balance is a wallet's financial triple.
type Balance struct {
	Amount        decimal.Decimal
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
}

// Of extracts the balance triple from a wallet snapshot.
func Of(w *models.Wallet) Balance {
	return Balance{
		Amount:        w.Amount,
		TotalIncome:   w.TotalIncome,
		TotalExpenses: w.TotalExpenses,
	}
}

// Apply returns the balance as if a transaction of the given type and
// (positive) amount is newly in force. The input is not mutated.
func Apply(b Balance, t models.TransactionType, amount decimal.Decimal) Balance {
	switch t {
	case models.TransactionTypeIncome:
		b.Amount = b.Amount.Add(amount)
		b.TotalIncome = b.TotalIncome.Add(amount)
	case models.TransactionTypeExpense:
		b.Amount = b.Amount.Sub(amount)
		b.TotalExpenses = b.TotalExpenses.Add(amount)
	}
	return b
}

// Revert returns the balance as if a previously applied transaction of
// the given type and amount is undone. Revert(Apply(b, t, x), t, x) == b.
func Revert(b Balance, t models.TransactionType, amount decimal.Decimal) Balance {
	switch t {
	case models.TransactionTypeIncome:
		b.Amount = b.Amount.Sub(amount)
		b.TotalIncome = b.TotalIncome.Sub(amount)
	case models.TransactionTypeExpense:
		b.Amount = b.Amount.Add(amount)
		b.TotalExpenses = b.TotalExpenses.Sub(amount)
	}
	return b
}

// Consistent reports whether the triple satisfies the wallet invariant
// amount == totalIncome - totalExpenses.
func (b Balance) Consistent() bool {
	return b.Amount.Equal(b.TotalIncome.Sub(b.TotalExpenses))
}

// Negative reports whether any field of the triple is below zero.
// A mutation whose result is negative in any field must be rejected.
func (b Balance) Negative() bool {
	return b.Amount.IsNegative() || b.TotalIncome.IsNegative() || b.TotalExpenses.IsNegative()
}
