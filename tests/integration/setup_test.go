package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Category{},
		&models.Transaction{},
		&models.RecurringIncome{},
		&models.RecurringExpense{},
		&models.BudgetRule{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db, categoryService)
	recurringService := services.NewRecurringService(db, categoryService)
	budgetRuleService := services.NewBudgetRuleService(db)
	materializerService := services.NewMaterializerService(db)
	dashboardService := services.NewDashboardService(db)

	// Handlers
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	recurringHandler := handlers.NewRecurringHandler(recurringService, materializerService)
	budgetRuleHandler := handlers.NewBudgetRuleHandler(budgetRuleService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, materializerService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

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

	budgetRules := v1.Group("/budget-rules")
	budgetRules.POST("", budgetRuleHandler.CreateBudgetRule)
	budgetRules.GET("", budgetRuleHandler.GetBudgetRules)
	budgetRules.GET("/:id", budgetRuleHandler.GetBudgetRuleByID)
	budgetRules.PUT("/:id", budgetRuleHandler.UpdateBudgetRule)
	budgetRules.DELETE("/:id", budgetRuleHandler.DeleteBudgetRule)

	v1.GET("/dashboard", dashboardHandler.GetDashboard)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
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

// createCategory creates a category via the API and returns its ID.
func (app *testApp) createCategory(t *testing.T, name, categoryType string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/categories",
		fmt.Sprintf(`{"name":%q,"type":%q}`, name, categoryType))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	category := result["category"].(map[string]interface{})
	return category["id"].(string)
}
