package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/blob"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/ledger"
	"spendwise/internal/logger"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/store"
)

// balanceWriteRetries bounds how often a mutation re-runs after losing
// an optimistic version check to a concurrent writer.
const balanceWriteRetries = 3

// transactionService sequences every balance-affecting mutation. It is
// the only writer of wallet balances: validation happens against loaded
// snapshots before any write, wallet balances are written before the
// transaction row that claims them, and balance writes are
// compare-and-swap on the wallet version.
type transactionService struct {
	wallets      store.Wallets
	transactions store.Transactions
	uploader     blob.Uploader
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(wallets store.Wallets, transactions store.Transactions, uploader blob.Uploader) TransactionServicer {
	return &transactionService{
		wallets:      wallets,
		transactions: transactions,
		uploader:     uploader,
	}
}

// CreateTransaction records a new income or expense against a wallet.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionData, "amount must be greater than zero")
	}
	if in.WalletID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionData, "wallet ID is required")
	}
	if !in.Type.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionData, "type must be income or expense")
	}
	if in.Type == models.TransactionTypeExpense && !models.ValidExpenseCategory(in.Category) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionData, "a valid category is required for expenses")
	}
	if in.Type == models.TransactionTypeIncome {
		in.Category = ""
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	wallet, err := s.wallets.GetOwned(userID, in.WalletID)
	if err != nil {
		return nil, err
	}

	// Resolve the receipt before any write so an upload failure leaves
	// no partial state behind.
	image, err := s.resolveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		applied := ledger.Apply(ledger.Of(wallet), in.Type, in.Amount)
		if in.Type == models.TransactionTypeExpense && applied.Amount.IsNegative() {
			return nil, apperrors.ErrInsufficientBalance
		}

		err = s.wallets.UpdateBalance(wallet, applied)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrWalletConflict) || attempt >= balanceWriteRetries {
			return nil, err
		}
		if wallet, err = s.wallets.GetOwned(userID, in.WalletID); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		UserID:      userID,
		WalletID:    in.WalletID,
		Type:        in.Type,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
		Description: in.Description,
		Image:       image,
	}
	if err := s.transactions.Create(transaction); err != nil {
		// The wallet effect is applied but the transaction row is
		// missing. Not auto-compensated; mark it for reconciliation.
		logger.Get().Errorw("ledger inconsistency: wallet updated but transaction not recorded",
			"user_id", userID,
			"wallet_id", in.WalletID,
			"type", in.Type,
			"amount", in.Amount,
		)
		return nil, err
	}
	return transaction, nil
}

// UpdateTransaction edits a transaction. Edits to type, amount, or
// wallet revert the old effect on the old wallet and apply the new
// effect on the target wallet; other fields merge without touching
// balances.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, patch TransactionPatch) (*models.Transaction, error) {
	old, err := s.transactions.GetOwned(userID, transactionID)
	if err != nil {
		return nil, err
	}

	newType := old.Type
	if patch.Type != nil {
		newType = *patch.Type
		if !newType.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionData, "type must be income or expense")
		}
	}
	newAmount := old.Amount
	if patch.Amount != nil {
		newAmount = *patch.Amount
		if !newAmount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionData, "amount must be greater than zero")
		}
	}
	newWalletID := old.WalletID
	if patch.WalletID != nil {
		if *patch.WalletID == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionData, "wallet ID is required")
		}
		newWalletID = *patch.WalletID
	}

	fields := map[string]any{}
	if patch.Type != nil {
		fields["type"] = newType
	}
	if patch.Amount != nil {
		fields["amount"] = newAmount
	}
	if patch.WalletID != nil {
		fields["wallet_id"] = newWalletID
	}
	if patch.Date != nil {
		fields["date"] = *patch.Date
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}

	// Category follows the effective type: expenses require a valid key,
	// income carries none.
	if newType == models.TransactionTypeExpense {
		category := old.Category
		if patch.Category != nil {
			category = *patch.Category
		}
		if !models.ValidExpenseCategory(category) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidTransactionData, "a valid category is required for expenses")
		}
		if category != old.Category {
			fields["category"] = category
		}
	} else if old.Category != "" || patch.Category != nil {
		fields["category"] = ""
	}

	if patch.ClearImage {
		fields["image"] = ""
	} else if patch.Image != nil {
		image, err := s.resolveImage(ctx, *patch.Image)
		if err != nil {
			return nil, err
		}
		fields["image"] = image
	}

	effectChanging := newType != old.Type || !newAmount.Equal(old.Amount) || newWalletID != old.WalletID
	if effectChanging {
		if err := s.revertAndReapply(userID, old, newType, newAmount, newWalletID); err != nil {
			return nil, err
		}
	}

	if len(fields) > 0 {
		if err := s.transactions.UpdateFields(transactionID, fields); err != nil {
			if effectChanging {
				logger.Get().Errorw("ledger inconsistency: wallets updated but transaction not merged",
					"user_id", userID,
					"transaction_id", transactionID,
					"old_wallet_id", old.WalletID,
					"new_wallet_id", newWalletID,
				)
			}
			return nil, err
		}
	}

	return s.transactions.GetOwned(userID, transactionID)
}

// revertAndReapply removes the old transaction's effect from its wallet
// and applies the new effect to the target wallet, which may be the
// same row. Both effects are validated before the first write commits.
func (s *transactionService) revertAndReapply(userID string, old *models.Transaction, newType models.TransactionType, newAmount decimal.Decimal, newWalletID string) error {
	oldWallet, err := s.wallets.GetOwned(userID, old.WalletID)
	if err != nil {
		return err
	}
	sameWallet := newWalletID == old.WalletID

	newWallet := oldWallet
	if !sameWallet {
		if newWallet, err = s.wallets.GetOwned(userID, newWalletID); err != nil {
			return err
		}
	}

	// Speculative validation against the loaded snapshots. Nothing has
	// been written yet, so a failure here mutates neither wallet.
	reverted := ledger.Revert(ledger.Of(oldWallet), old.Type, old.Amount)
	if newType == models.TransactionTypeExpense {
		if sameWallet && reverted.Amount.LessThan(newAmount) {
			return apperrors.ErrInsufficientBalance
		}
		if !sameWallet && newWallet.Amount.LessThan(newAmount) {
			return apperrors.ErrInsufficientBalance
		}
	}

	// Write 1: persist the reverted old wallet.
	for attempt := 0; ; attempt++ {
		err = s.wallets.UpdateBalance(oldWallet, reverted)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrWalletConflict) || attempt >= balanceWriteRetries {
			return err
		}
		if oldWallet, err = s.wallets.GetOwned(userID, old.WalletID); err != nil {
			return err
		}
		reverted = ledger.Revert(ledger.Of(oldWallet), old.Type, old.Amount)
		if newType == models.TransactionTypeExpense && sameWallet && reverted.Amount.LessThan(newAmount) {
			return apperrors.ErrInsufficientBalance
		}
	}

	// Re-read the target: when old and new wallet are the same row the
	// revert above just changed it, and reading fresh avoids
	// double-counting.
	if newWallet, err = s.wallets.GetOwned(userID, newWalletID); err != nil {
		return err
	}

	// Write 2: apply the new effect.
	for attempt := 0; ; attempt++ {
		applied := ledger.Apply(ledger.Of(newWallet), newType, newAmount)
		if newType == models.TransactionTypeExpense && applied.Amount.IsNegative() {
			// A concurrent writer drained the target between validation
			// and now; the old wallet stays reverted.
			logger.Get().Errorw("ledger inconsistency: old wallet reverted but new effect not applied",
				"user_id", userID,
				"transaction_id", old.ID,
				"old_wallet_id", old.WalletID,
				"new_wallet_id", newWalletID,
			)
			return apperrors.ErrInsufficientBalance
		}

		err = s.wallets.UpdateBalance(newWallet, applied)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrWalletConflict) || attempt >= balanceWriteRetries {
			return err
		}
		if newWallet, err = s.wallets.GetOwned(userID, newWalletID); err != nil {
			return err
		}
	}
}

// DeleteTransaction removes a transaction and reverts its effect on the
// owning wallet.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.transactions.GetOwned(userID, transactionID)
	if err != nil {
		return err
	}

	wallet, err := s.wallets.GetOwned(userID, transaction.WalletID)
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		reverted := ledger.Revert(ledger.Of(wallet), transaction.Type, transaction.Amount)
		// Later activity may have spent money this transaction brought
		// in: deleting it would leave the wallet negative.
		if reverted.Negative() {
			return apperrors.ErrInvalidOperation
		}

		err = s.wallets.UpdateBalance(wallet, reverted)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrWalletConflict) || attempt >= balanceWriteRetries {
			return err
		}
		if wallet, err = s.wallets.GetOwned(userID, transaction.WalletID); err != nil {
			return err
		}
	}

	if err := s.transactions.Delete(transactionID); err != nil {
		logger.Get().Errorw("ledger inconsistency: wallet reverted but transaction not deleted",
			"user_id", userID,
			"transaction_id", transactionID,
			"wallet_id", transaction.WalletID,
		)
		return err
	}
	return nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	return s.transactions.GetOwned(userID, transactionID)
}

// GetUserTransactions retrieves a paginated, filtered list of the
// user's transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter store.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()
	filter.UserID = userID

	transactions, totalItems, err := s.transactions.Query(filter, &page)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// resolveImage uploads a pending image reference and returns the hosted
// URL. Already-resolved URLs and empty references pass through.
func (s *transactionService) resolveImage(ctx context.Context, ref string) (string, error) {
	if ref == "" || blob.Resolved(ref) {
		return ref, nil
	}
	url, err := s.uploader.Upload(ctx, ref, "transactions")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrAttachmentUploadFailed, err)
	}
	return url, nil
}
