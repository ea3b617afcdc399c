// Package routes defines the API routing configuration.
// It wires repositories, services and handlers and groups the three
// portals (customer, merchant, admin) under their guards.
package routes

import (
	"bariq/internal/config"
	"bariq/internal/handlers"
	"bariq/internal/metrics"
	"bariq/internal/middleware"
	"bariq/internal/models"
	"bariq/internal/realtime"
	"bariq/internal/repositories"
	"bariq/internal/services/admin"
	"bariq/internal/services/audit"
	"bariq/internal/services/auth"
	"bariq/internal/services/credit"
	"bariq/internal/services/merchant"
	"bariq/internal/services/payment"
	"bariq/internal/services/settlement"
	"bariq/internal/services/transaction"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, hub *realtime.Hub) {
	rules := config.Rules()

	// Repositories
	customerRepo := repositories.NewCustomerRepository(repositories.DB, repositories.CacheService)
	merchantRepo := repositories.NewMerchantRepository(repositories.DB, repositories.CacheService)
	staffRepo := repositories.NewStaffRepository(repositories.DB)
	adminRepo := repositories.NewAdminRepository(repositories.DB)
	txRepo := repositories.NewTransactionRepository(repositories.DB)
	paymentRepo := repositories.NewPaymentRepository(repositories.DB)
	settlementRepo := repositories.NewSettlementRepository(repositories.DB)
	creditReqRepo := repositories.NewCreditRequestRepository(repositories.DB)
	auditRepo := repositories.NewAuditRepository(repositories.DB)

	// Cross-cutting services
	auditor := audit.NewRecorder(auditRepo)
	collector := metrics.NewPrometheusCollector()

	// Domain services
	authService := auth.NewService(customerRepo, staffRepo, adminRepo, rules)
	creditService := credit.NewService(customerRepo, txRepo, creditReqRepo, auditor, hub, rules)
	transactionService := transaction.NewService(txRepo, customerRepo, merchantRepo, auditor, hub, collector, rules)
	paymentService := payment.NewService(paymentRepo, txRepo, payment.NewStripeGateway(), hub, collector, rules)
	settlementService := settlement.NewService(settlementRepo, txRepo, merchantRepo, auditor, hub)
	merchantService := merchant.NewService(merchantRepo, staffRepo, auditor, rules)
	adminService := admin.NewService(customerRepo, merchantRepo, txRepo, settlementRepo, auditRepo, auditor, hub, rules)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	customerHandler := handlers.NewCustomerHandler(customerRepo, creditService, transactionService, paymentService)
	merchantHandler := handlers.NewMerchantHandler(staffRepo, merchantService, transactionService, settlementService)
	adminHandler := handlers.NewAdminHandler(adminService, creditService, settlementService)
	wsHandler := handlers.NewWSHandler(hub)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Bariq API",
			"version": "1.0.0",
		})
	})
	app.Get("/health", handlers.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/auth/customer/register", authHandler.RegisterCustomer)
	api.Post("/auth/customer/login", authHandler.CustomerLogin)
	api.Post("/auth/merchant/login", authHandler.StaffLogin)
	api.Post("/auth/admin/login", authHandler.AdminLogin)
	api.Post("/auth/refresh", authHandler.Refresh)
	api.Post("/merchants/register", merchantHandler.Register)

	// Realtime
	app.Get("/ws", wsHandler.Upgrade, websocket.New(wsHandler.Serve))

	// Customer portal
	customerAPI := api.Group("/customer", middleware.Authenticate, middleware.RequireCustomer)
	customerAPI.Get("/profile", customerHandler.Profile)
	customerAPI.Get("/credit", customerHandler.CreditSummary)
	customerAPI.Get("/debt", customerHandler.Debt)
	customerAPI.Get("/transactions", customerHandler.ListTransactions)
	customerAPI.Get("/transactions/:id", customerHandler.GetTransaction)
	customerAPI.Post("/transactions/:id/confirm", customerHandler.ConfirmTransaction)
	customerAPI.Post("/payments", customerHandler.MakePayment)
	customerAPI.Get("/payments", customerHandler.ListPayments)
	customerAPI.Get("/payments/:id", customerHandler.GetPayment)
	customerAPI.Post("/payments/:id/retry", customerHandler.RetryPayment)
	customerAPI.Post("/credit-requests", customerHandler.RequestCreditIncrease)
	customerAPI.Get("/credit-requests", customerHandler.ListCreditRequests)

	// Merchant portal
	merchantAPI := api.Group("/merchant", middleware.Authenticate, middleware.RequireStaff)
	merchantAPI.Get("/profile", merchantHandler.Profile)
	merchantAPI.Put("/bank-details", merchantHandler.UpdateBankDetails)

	merchantAPI.Post("/transactions", merchantHandler.CreateTransaction)
	merchantAPI.Get("/transactions", merchantHandler.ListTransactions)
	merchantAPI.Get("/transactions/:id", merchantHandler.GetTransaction)
	merchantAPI.Post("/transactions/:id/cancel", middleware.NotCashier, merchantHandler.CancelTransaction)
	merchantAPI.Post("/transactions/:id/return", middleware.NotCashier, merchantHandler.ProcessReturn)
	merchantAPI.Get("/returns", middleware.NotCashier, merchantHandler.ListReturns)

	merchantAPI.Get("/branches", merchantHandler.ListBranches)
	merchantAPI.Post("/branches", middleware.RequireRole(models.RoleExecutiveManager), merchantHandler.CreateBranch)
	merchantAPI.Put("/branches/:id/status", middleware.RequireRole(models.RoleExecutiveManager), merchantHandler.SetBranchActive)
	merchantAPI.Get("/regions", merchantHandler.ListRegions)
	merchantAPI.Post("/regions", middleware.RequireRole(models.RoleExecutiveManager), merchantHandler.CreateRegion)

	merchantAPI.Get("/staff", middleware.RequireRole(models.RoleBranchManager), merchantHandler.ListStaff)
	merchantAPI.Post("/staff", middleware.RequireRole(models.RoleBranchManager), merchantHandler.CreateStaff)
	merchantAPI.Get("/staff/:id", middleware.RequireRole(models.RoleBranchManager), merchantHandler.GetStaff)
	merchantAPI.Put("/staff/:id", middleware.RequireRole(models.RoleBranchManager), merchantHandler.UpdateStaff)
	merchantAPI.Put("/staff/:id/status", middleware.RequireRole(models.RoleBranchManager), merchantHandler.SetStaffActive)

	merchantAPI.Get("/settlements", middleware.NotCashier, merchantHandler.ListSettlements)
	merchantAPI.Get("/settlements/:id", middleware.NotCashier, merchantHandler.GetSettlement)

	// Admin portal
	adminAPI := api.Group("/admin", middleware.Authenticate, middleware.RequireAdmin)
	adminAPI.Get("/dashboard", adminHandler.Dashboard)

	adminAPI.Get("/customers", adminHandler.ListCustomers)
	adminAPI.Get("/customers/:id", adminHandler.GetCustomer)
	adminAPI.Put("/customers/:id/status", adminHandler.SetCustomerStatus)
	adminAPI.Put("/customers/:id/credit-limit", adminHandler.UpdateCreditLimit)

	adminAPI.Get("/credit-requests", adminHandler.ListCreditRequests)
	adminAPI.Post("/credit-requests/:id/decide", adminHandler.DecideCreditRequest)

	adminAPI.Get("/merchants", adminHandler.ListMerchants)
	adminAPI.Get("/merchants/:id", adminHandler.GetMerchant)
	adminAPI.Post("/merchants/:id/approve", adminHandler.ApproveMerchant)
	adminAPI.Post("/merchants/:id/suspend", adminHandler.SuspendMerchant)
	adminAPI.Put("/merchants/:id/commission", adminHandler.SetCommissionRate)

	adminAPI.Post("/settlements", adminHandler.GenerateSettlement)
	adminAPI.Get("/settlements", adminHandler.ListSettlements)
	adminAPI.Get("/settlements/:id", adminHandler.GetSettlement)
	adminAPI.Post("/settlements/:id/approve", adminHandler.ApproveSettlement)
	adminAPI.Post("/settlements/:id/transfer", adminHandler.TransferSettlement)

	adminAPI.Get("/overdue", adminHandler.ListOverdue)
	adminAPI.Get("/audit-logs", adminHandler.ListAuditLogs)
}
