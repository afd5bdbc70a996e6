package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"spendwise/internal/blob"
	"spendwise/internal/config"
	"spendwise/internal/database"
	"spendwise/internal/handlers"
	"spendwise/internal/logger"
	"spendwise/internal/middleware"
	"spendwise/internal/services"
	"spendwise/internal/store"
	"spendwise/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "spendwise/internal/docs" // Import swagger docs
)

// @title           Spendwise API
// @version         1.0
// @description     Spendwise is a personal finance application that tracks wallets, income and expense transactions, and spending statistics.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom validators
	validator.Register()

	// Initialize stores and the image uploader
	db := dbManager.DB()
	wallets := store.NewWallets(db)
	transactions := store.NewTransactions(db)
	uploader := blob.NewCloudinaryUploader(
		&http.Client{Timeout: 30 * time.Second},
		appConfig.CloudinaryCloudName,
		appConfig.CloudinaryUploadPreset,
	)

	// Initialize services
	userService := services.NewUserService(db, uploader)
	auditService := services.NewAuditService(db)
	walletService := services.NewWalletService(wallets, transactions, uploader)
	transactionService := services.NewTransactionService(wallets, transactions, uploader)
	statsService := services.NewStatsService(transactions)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	walletHandler := handlers.NewWalletHandler(walletService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	// Wallet routes
	walletRoutes := protected.Group("/wallets")
	walletRoutes.POST("", walletHandler.CreateWallet)
	walletRoutes.GET("", walletHandler.GetUserWallets)
	walletRoutes.GET("/:id", walletHandler.GetWalletByID)
	walletRoutes.PUT("/:id", walletHandler.UpdateWallet)
	walletRoutes.DELETE("/:id", walletHandler.DeleteWallet)

	// Transaction routes
	transactionRoutes := protected.Group("/transactions")
	transactionRoutes.POST("", transactionHandler.CreateTransaction)
	transactionRoutes.GET("", transactionHandler.GetUserTransactions)
	transactionRoutes.GET("/:id", transactionHandler.GetTransactionByID)
	transactionRoutes.PUT("/:id", transactionHandler.UpdateTransaction)
	transactionRoutes.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Statistics routes
	statsRoutes := protected.Group("/stats")
	statsRoutes.GET("/weekly", statsHandler.GetWeeklyStats)
	statsRoutes.GET("/monthly", statsHandler.GetMonthlyStats)
	statsRoutes.GET("/yearly", statsHandler.GetYearlyStats)

	log.Infof("Starting Spendwise backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
