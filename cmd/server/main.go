// Package main is the entry point for the API server.
// It initializes storage, wires the services and starts the HTTP server
// with the overdue sweep running in the background.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bariq/internal/config"
	"bariq/internal/realtime"
	"bariq/internal/repositories"
	"bariq/internal/routes"
	"bariq/internal/services/transaction"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if repositories.DB != nil {
			if sqlDB, err := repositories.DB.DB(); err == nil {
				sqlDB.Close()
			}
		}
		if repositories.CacheService != nil {
			repositories.CacheService.Close()
		}
	}()

	if repositories.CacheService != nil {
		if err := repositories.CacheService.FlushAll(context.Background()); err != nil {
			log.Printf("Cache flush failed: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName: "bariq",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Rate-limit the credential endpoints
	for _, path := range []string{
		"/api/auth/customer/register",
		"/api/auth/customer/login",
		"/api/auth/merchant/login",
		"/api/auth/admin/login",
	} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        5,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests. Please try again later.",
				})
			},
		}))
	}

	hub := realtime.NewHub()
	routes.SetupRoutes(app, hub)

	go runOverdueSweep()

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	port := config.GetEnv("PORT", "8080")
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runOverdueSweep periodically flips confirmed transactions past their
// due date to overdue. The sweep is idempotent, so overlapping runs
// across instances are harmless.
func runOverdueSweep() {
	rules := config.Rules()
	svc := transaction.NewService(
		repositories.NewTransactionRepository(repositories.DB),
		repositories.NewCustomerRepository(repositories.DB, repositories.CacheService),
		repositories.NewMerchantRepository(repositories.DB, repositories.CacheService),
		nil, nil, nil,
		rules,
	)

	interval := config.GetDurationEnv("OVERDUE_SWEEP_INTERVAL", time.Hour)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		n, err := svc.MarkOverdue()
		if err != nil {
			log.Printf("overdue sweep failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("overdue sweep: %d transactions marked overdue", n)
		}
	}
}
