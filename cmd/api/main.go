package main

import (
	"fmt"
	"net/http"
	"os"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
	"fintrack/internal/validator"

	"github.com/gin-gonic/gin"
)

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
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db, categoryService)
	recurringService := services.NewRecurringService(db, categoryService)
	budgetRuleService := services.NewBudgetRuleService(db)
	materializerService := services.NewMaterializerService(db)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	recurringHandler := handlers.NewRecurringHandler(recurringService, materializerService)
	budgetRuleHandler := handlers.NewBudgetRuleHandler(budgetRuleService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, materializerService)

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

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Category routes
	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Recurring rule routes
	recurring := v1.Group("/recurring")
	recurring.POST("/materialize", recurringHandler.Materialize)

	incomes := recurring.Group("/incomes")
	incomes.POST("", recurringHandler.CreateRecurringIncome)
	incomes.GET("", recurringHandler.GetRecurringIncomes)
	incomes.GET("/:id", recurringHandler.GetRecurringIncomeByID)
	incomes.PUT("/:id", recurringHandler.UpdateRecurringIncome)
	incomes.DELETE("/:id", recurringHandler.DeleteRecurringIncome)

	expenses := recurring.Group("/expenses")
	expenses.POST("", recurringHandler.CreateRecurringExpense)
	expenses.GET("", recurringHandler.GetRecurringExpenses)
	expenses.GET("/:id", recurringHandler.GetRecurringExpenseByID)
	expenses.PUT("/:id", recurringHandler.UpdateRecurringExpense)
	expenses.DELETE("/:id", recurringHandler.DeleteRecurringExpense)

	// Budget rule routes
	budgetRules := v1.Group("/budget-rules")
	budgetRules.POST("", budgetRuleHandler.CreateBudgetRule)
	budgetRules.GET("", budgetRuleHandler.GetBudgetRules)
	budgetRules.GET("/:id", budgetRuleHandler.GetBudgetRuleByID)
	budgetRules.PUT("/:id", budgetRuleHandler.UpdateBudgetRule)
	budgetRules.DELETE("/:id", budgetRuleHandler.DeleteBudgetRule)

	// Dashboard route
	v1.GET("/dashboard", dashboardHandler.GetDashboard)

	log.Infof("Starting fintrack backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
