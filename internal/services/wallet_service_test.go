package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"spendwise/internal/models"
	"spendwise/internal/store"
	"spendwise/internal/testutil"
)

func newWalletService(db *gorm.DB) (WalletServicer, *fakeUploader) {
	up := &fakeUploader{}
	return NewWalletService(store.NewWallets(db), store.NewTransactions(db), up), up
}

func TestCreateWallet(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newWalletService(db)
		user := testutil.CreateTestUser(t, db)

		wallet, err := svc.CreateWallet(context.Background(), user.ID, "Savings", "")
		testutil.AssertNoError(t, err)

		if wallet.ID == "" {
			t.Fatal("expected non-empty wallet ID")
		}
		if wallet.Name != "Savings" {
			t.Errorf("expected name Savings, got %q", wallet.Name)
		}
		testutil.AssertDecimalEqual(t, "0", wallet.Amount)
		testutil.AssertDecimalEqual(t, "0", wallet.TotalIncome)
		testutil.AssertDecimalEqual(t, "0", wallet.TotalExpenses)
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newWalletService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateWallet(context.Background(), user.ID, "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("uploads_pending_icon", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, up := newWalletService(db)
		user := testutil.CreateTestUser(t, db)

		wallet, err := svc.CreateWallet(context.Background(), user.ID, "Savings", "icon-001.png")
		testutil.AssertNoError(t, err)
		if wallet.Image != "https://img.test/wallets/icon-001.png" {
			t.Errorf("unexpected icon URL: %q", wallet.Image)
		}
		if up.calls != 1 {
			t.Errorf("expected 1 upload, got %d", up.calls)
		}
	})

	t.Run("upload_failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, up := newWalletService(db)
		up.fail = true
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateWallet(context.Background(), user.ID, "Savings", "icon-001.png")
		testutil.AssertAppError(t, err, "ATTACHMENT_UPLOAD_FAILED")

		var n int64
		if err := db.Model(&models.Wallet{}).Count(&n).Error; err != nil {
			t.Fatalf("failed to count wallets: %v", err)
		}
		if n != 0 {
			t.Errorf("expected no wallets, got %d", n)
		}
	})
}

func TestUpdateWallet(t *testing.T) {
	t.Run("rename", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newWalletService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, dec("100"))

		name := "Holiday Fund"
		updated, err := svc.UpdateWallet(context.Background(), user.ID, wallet.ID, WalletPatch{Name: &name})
		testutil.AssertNoError(t, err)
		if updated.Name != name {
			t.Errorf("expected name %q, got %q", name, updated.Name)
		}

		// Balances stay untouched on display-field updates
		testutil.AssertDecimalEqual(t, "100", updated.Amount)
		testutil.AssertDecimalEqual(t, "100", updated.TotalIncome)
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newWalletService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		name := ""
		_, err := svc.UpdateWallet(context.Background(), user.ID, wallet.ID, WalletPatch{Name: &name})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("clear_icon", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newWalletService(db)
		user := testutil.CreateTestUser(t, db)

		wallet, err := svc.CreateWallet(context.Background(), user.ID, "Savings", "icon-001.png")
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateWallet(context.Background(), user.ID, wallet.ID, WalletPatch{ClearImage: true})
		testutil.AssertNoError(t, err)
		if updated.Image != "" {
			t.Errorf("expected icon cleared, got %q", updated.Image)
		}
	})

	t.Run("not_owned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newWalletService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, owner.ID)

		name := "Mine Now"
		_, err := svc.UpdateWallet(context.Background(), intruder.ID, wallet.ID, WalletPatch{Name: &name})
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
	})
}

func TestGetUserWallets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc, _ := newWalletService(db)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	testutil.CreateTestWallet(t, db, alice.ID)
	testutil.CreateTestWallet(t, db, alice.ID)
	testutil.CreateTestWallet(t, db, bob.ID)

	wallets, err := svc.GetUserWallets(alice.ID)
	testutil.AssertNoError(t, err)
	if len(wallets) != 2 {
		t.Errorf("expected 2 wallets, got %d", len(wallets))
	}
	for _, w := range wallets {
		if w.UserID != alice.ID {
			t.Errorf("expected wallets scoped to user, got wallet of %s", w.UserID)
		}
	}
}

func TestDeleteWallet(t *testing.T) {
	t.Run("cascades_to_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newWalletService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)
		other := testutil.CreateTestWallet(t, db, user.ID)
		testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, dec("100"))
		testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeExpense, dec("20"))
		keep := testutil.CreateTestTransaction(t, db, user.ID, other.ID, models.TransactionTypeIncome, dec("50"))

		err := svc.DeleteWallet(user.ID, wallet.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.GetWalletByID(user.ID, wallet.ID)
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")

		var n int64
		if err := db.Model(&models.Transaction{}).Where("wallet_id = ?", wallet.ID).Count(&n).Error; err != nil {
			t.Fatalf("failed to count transactions: %v", err)
		}
		if n != 0 {
			t.Errorf("expected cascading delete, %d transactions remain", n)
		}

		// The other wallet's history survives
		var kept models.Transaction
		if err := db.First(&kept, "id = ?", keep.ID).Error; err != nil {
			t.Errorf("expected unrelated transaction to survive: %v", err)
		}
	})

	t.Run("not_owned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc, _ := newWalletService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, owner.ID)

		err := svc.DeleteWallet(intruder.ID, wallet.ID)
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
	})
}
