// Package integration exercises the full HTTP stack against an
// isolated in-memory database per test.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"spendwise/internal/handlers"
	"spendwise/internal/logger"
	"spendwise/internal/middleware"
	"spendwise/internal/models"
	"spendwise/internal/services"
	"spendwise/internal/store"
	"spendwise/internal/validator"
)

// testApp bundles the database and router for a single test.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// fakeUploader resolves pending references without touching the network.
type fakeUploader struct{}

func (f *fakeUploader) Upload(_ context.Context, ref, folder string) (string, error) {
	return "https://img.test/" + folder + "/" + ref, nil
}

// setupIsolatedDB creates a uniquely named in-memory database so
// parallel tests never share state.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Transaction{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// setupApp wires the full service and handler stack against an
// isolated database, mirroring the production router.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	wallets := store.NewWallets(db)
	transactions := store.NewTransactions(db)
	uploader := &fakeUploader{}

	userService := services.NewUserService(db, uploader)
	auditService := services.NewAuditService(db)
	walletService := services.NewWalletService(wallets, transactions, uploader)
	transactionService := services.NewTransactionService(wallets, transactions, uploader)
	statsService := services.NewStatsService(transactions)

	authHandler := handlers.NewAuthHandler(userService, auditService)
	walletHandler := handlers.NewWalletHandler(walletService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	statsHandler := handlers.NewStatsHandler(statsService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	walletRoutes := protected.Group("/wallets")
	walletRoutes.POST("", walletHandler.CreateWallet)
	walletRoutes.GET("", walletHandler.GetUserWallets)
	walletRoutes.GET("/:id", walletHandler.GetWalletByID)
	walletRoutes.PUT("/:id", walletHandler.UpdateWallet)
	walletRoutes.DELETE("/:id", walletHandler.DeleteWallet)

	transactionRoutes := protected.Group("/transactions")
	transactionRoutes.POST("", transactionHandler.CreateTransaction)
	transactionRoutes.GET("", transactionHandler.GetUserTransactions)
	transactionRoutes.GET("/:id", transactionHandler.GetTransactionByID)
	transactionRoutes.PUT("/:id", transactionHandler.UpdateTransaction)
	transactionRoutes.DELETE("/:id", transactionHandler.DeleteTransaction)

	statsRoutes := protected.Group("/stats")
	statsRoutes.GET("/weekly", statsHandler.GetWeeklyStats)
	statsRoutes.GET("/monthly", statsHandler.GetMonthlyStats)
	statsRoutes.GET("/yearly", statsHandler.GetYearlyStats)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// successData asserts the uniform success envelope and returns its data field.
func successData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	result := parseJSON(t, rec)
	if result["success"] != true {
		t.Fatalf("expected success envelope, got: %s", rec.Body.String())
	}
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got: %s", rec.Body.String())
	}
	return data
}

// assertErrorCode asserts the uniform failure envelope carries the given code.
func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	result := parseJSON(t, rec)
	if result["success"] != false {
		t.Fatalf("expected failure envelope, got: %s", rec.Body.String())
	}
	if result["code"] != code {
		t.Errorf("expected error code %s, got %v", code, result["code"])
	}
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"name":"Test User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	data := successData(t, rec)
	user := data["user"].(map[string]interface{})
	return data["token"].(string), data["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	data := successData(t, rec)
	return data["token"].(string), data["refresh_token"].(string)
}

// createWallet creates a wallet and returns its ID.
func (app *testApp) createWallet(t *testing.T, token, name string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/wallets", fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create wallet failed: %d %s", rec.Code, rec.Body.String())
	}
	data := successData(t, rec)
	wallet := data["wallet"].(map[string]interface{})
	return wallet["id"].(string)
}

// getWallet fetches a wallet by ID.
func (app *testApp) getWallet(t *testing.T, token, walletID string) map[string]interface{} {
	t.Helper()
	rec := app.request("GET", "/api/v1/wallets/"+walletID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get wallet failed: %d %s", rec.Code, rec.Body.String())
	}
	return successData(t, rec)["wallet"].(map[string]interface{})
}

// createTransaction records a transaction and returns its ID. Expenses
// are filed under the fallback category.
func (app *testApp) createTransaction(t *testing.T, token, walletID, txType, amount string) string {
	t.Helper()
	body := fmt.Sprintf(`{"wallet_id":%q,"type":%q,"amount":%q}`, walletID, txType, amount)
	if txType == "expense" {
		body = fmt.Sprintf(`{"wallet_id":%q,"type":%q,"amount":%q,"category":"others"}`, walletID, txType, amount)
	}
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction failed: %d %s", rec.Code, rec.Body.String())
	}
	data := successData(t, rec)
	tx := data["transaction"].(map[string]interface{})
	return tx["id"].(string)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// jsonDecimal parses a decimal field that arrives as a JSON string.
func jsonDecimal(t *testing.T, obj map[string]interface{}, field string) decimal.Decimal {
	t.Helper()
	raw, ok := obj[field].(string)
	if !ok {
		t.Fatalf("expected %s to be a string, got %T", field, obj[field])
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("invalid decimal in %s: %v", field, err)
	}
	return d
}

// assertWalletBalance checks the wallet's running balance and totals.
func (app *testApp) assertWalletBalance(t *testing.T, token, walletID, amount, income, expenses string) {
	t.Helper()
	wallet := app.getWallet(t, token, walletID)
	if got := jsonDecimal(t, wallet, "amount"); !got.Equal(decimal.RequireFromString(amount)) {
		t.Errorf("expected amount %s, got %s", amount, got)
	}
	if got := jsonDecimal(t, wallet, "total_income"); !got.Equal(decimal.RequireFromString(income)) {
		t.Errorf("expected total_income %s, got %s", income, got)
	}
	if got := jsonDecimal(t, wallet, "total_expenses"); !got.Equal(decimal.RequireFromString(expenses)) {
		t.Errorf("expected total_expenses %s, got %s", expenses, got)
	}
}
