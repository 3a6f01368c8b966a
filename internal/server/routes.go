package server

import (
	"github.com/labstack/echo/v4"

	"example.com/household-finance/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	fundHandler *handlers.FundHandler,
	incomeHandler *handlers.IncomeHandler,
	expenseHandler *handlers.ExpenseHandler,
	budgetHandler *handlers.BudgetHandler,
	creditHandler *handlers.CreditHandler,
	assetHandler *handlers.AssetHandler,
	statsHandler *handlers.StatsHandler,
	importHandler *handlers.ImportHandler,
	exportHandler *handlers.ExportHandler,
	notificationHandler *handlers.NotificationHandler,
	adminHandler *handlers.AdminHandler,
	authMiddleware echo.MiddlewareFunc,
	adminMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	importRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	accounts := api.Group("/accounts", authMiddleware)
	accounts.GET("", accountHandler.List)
	accounts.POST("", accountHandler.Create)
	accounts.GET("/:id", accountHandler.Get)
	accounts.PUT("/:id", accountHandler.Update)
	accounts.PATCH("/:id/archive", accountHandler.Archive)
	accounts.PATCH("/:id/balance", accountHandler.AdjustBalance)
	accounts.DELETE("/:id", accountHandler.Delete)

	funds := api.Group("/funds", authMiddleware)
	funds.GET("", fundHandler.List)
	funds.POST("", fundHandler.Create)
	funds.GET("/:id", fundHandler.Get)
	funds.PUT("/:id", fundHandler.Update)
	funds.PATCH("/:id/status", fundHandler.UpdateStatus)
	funds.PATCH("/:id/balance", fundHandler.AdjustBalance)
	funds.DELETE("/:id", fundHandler.Delete)

	incomes := api.Group("/incomes", authMiddleware)
	incomes.GET("", incomeHandler.List)
	incomes.POST("", incomeHandler.Create)
	incomes.GET("/:id", incomeHandler.Get)
	incomes.DELETE("/:id", incomeHandler.Delete)
	incomes.PATCH("/:id/distributions/:fundId", incomeHandler.UpdateDistribution)
	incomes.POST("/:id/distributions/:fundId/confirm", incomeHandler.ConfirmDistribution)

	expenses := api.Group("/expenses", authMiddleware)
	expenses.GET("", expenseHandler.List)
	expenses.POST("", expenseHandler.Create)
	expenses.GET("/:id", expenseHandler.Get)
	expenses.PUT("/:id", expenseHandler.Update)
	expenses.DELETE("/:id", expenseHandler.Delete)

	budgets := api.Group("/budgets", authMiddleware)
	budgets.GET("", budgetHandler.List)
	budgets.PUT("", budgetHandler.Upsert)
	budgets.DELETE("/:id", budgetHandler.Delete)

	credits := api.Group("/credits", authMiddleware)
	credits.GET("", creditHandler.List)
	credits.POST("", creditHandler.Create)
	credits.GET("/:id", creditHandler.Get)
	credits.PUT("/:id", creditHandler.Update)
	credits.POST("/:id/payments", creditHandler.RecordPayment)
	credits.DELETE("/:id", creditHandler.Delete)

	assets := api.Group("/assets", authMiddleware)
	assets.GET("", assetHandler.List)
	assets.POST("", assetHandler.Create)
	assets.PUT("/:id", assetHandler.Update)
	assets.DELETE("/:id", assetHandler.Delete)

	stats := api.Group("/stats", authMiddleware)
	stats.GET("/overview", statsHandler.Overview)
	stats.GET("/categories", statsHandler.Categories)
	stats.GET("/cashflow", statsHandler.Cashflow)

	imports := api.Group("/imports", authMiddleware, importRateLimiter)
	imports.POST("/analyze", importHandler.Analyze)
	imports.POST("/execute", importHandler.Execute)

	exports := api.Group("/exports", authMiddleware)
	exports.GET("/csv", exportHandler.ExportCSV)
	exports.GET("/json", exportHandler.ExportJSON)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)

	admin := api.Group("/admin", authMiddleware, adminMiddleware)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/usage", adminHandler.Usage)
}
