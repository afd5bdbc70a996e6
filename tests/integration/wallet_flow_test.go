package integration

import (
	"net/http"
	"testing"
)

func TestWalletFlow_CreateUpdateDelete(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "wallet@test.com", "password123")

	// Create starts with zero balances.
	walletID := app.createWallet(t, token, "Checking")
	app.assertWalletBalance(t, token, walletID, "0", "0", "0")

	// Rename without touching balances.
	rec := app.request("PUT", "/api/v1/wallets/"+walletID, `{"name":"Everyday"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	wallet := successData(t, rec)["wallet"].(map[string]interface{})
	if wallet["name"] != "Everyday" {
		t.Errorf("expected renamed wallet, got %v", wallet["name"])
	}
	app.assertWalletBalance(t, token, walletID, "0", "0", "0")

	// List shows the single wallet.
	rec = app.request("GET", "/api/v1/wallets", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	walletList := successData(t, rec)["wallets"].([]interface{})
	if len(walletList) != 1 {
		t.Fatalf("expected 1 wallet, got %d", len(walletList))
	}

	// Delete removes the wallet.
	rec = app.request("DELETE", "/api/v1/wallets/"+walletID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/wallets/"+walletID, "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestWalletFlow_DeleteCascadesToTransactions(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "cascade@test.com", "password123")

	walletID := app.createWallet(t, token, "Doomed")
	keptID := app.createWallet(t, token, "Kept")

	app.createTransaction(t, token, walletID, "income", "100")
	app.createTransaction(t, token, keptID, "income", "50")

	rec := app.request("DELETE", "/api/v1/wallets/"+walletID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}

	// Only the surviving wallet's transaction remains.
	rec = app.request("GET", "/api/v1/transactions", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	page := successData(t, rec)
	items := page["data"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 surviving transaction, got %d", len(items))
	}
	tx := items[0].(map[string]interface{})
	if tx["wallet_id"] != keptID {
		t.Errorf("expected surviving transaction on kept wallet, got %v", tx["wallet_id"])
	}
}

func TestWalletFlow_IsolatedBetweenUsers(t *testing.T) {
	app := setupApp(t)
	ownerToken, _, _ := app.registerUser(t, "owner@test.com", "password123")
	otherToken, _, _ := app.registerUser(t, "other@test.com", "password123")

	walletID := app.createWallet(t, ownerToken, "Private")

	rec := app.request("GET", "/api/v1/wallets/"+walletID, "", otherToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign wallet, got %d", rec.Code)
	}
	assertErrorCode(t, rec, "WALLET_NOT_FOUND")

	rec = app.request("DELETE", "/api/v1/wallets/"+walletID, "", otherToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting foreign wallet, got %d", rec.Code)
	}
}
