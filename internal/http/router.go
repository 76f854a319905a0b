package http

import (
	"time"

	"github.com/escrow-marketplace/backend/internal/config"
	"github.com/escrow-marketplace/backend/internal/http/handlers"
	"github.com/escrow-marketplace/backend/internal/middleware"
	"github.com/escrow-marketplace/backend/internal/rbac"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	users middleware.UserLoader,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	productHandler *handlers.ProductHandler,
	orderHandler *handlers.OrderHandler,
	walletHandler *handlers.WalletHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public, IP-keyed limit against credential stuffing)
	authLimit := middleware.RateLimitMiddleware(rdb, 20, time.Minute)
	api.Post("/auth/register", authLimit, authHandler.Register)
	api.Post("/auth/login", authLimit, authHandler.Login)

	// Protected endpoints, rate limited per user
	protected := api.Group("",
		middleware.AuthMiddleware(cfg, users, log),
		middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Get("/me/wallet", middleware.RequirePermission(rbac.PermViewWallet), walletHandler.GetMyWallet)

	// Products
	protected.Post("/products", middleware.RequirePermission(rbac.PermCreateProduct), productHandler.CreateProduct)
	protected.Get("/products", productHandler.ListProducts)
	protected.Get("/products/:id", productHandler.GetProduct)

	// Orders / escrow
	protected.Post("/orders", middleware.RequirePermission(rbac.PermInitiatePayment), orderHandler.InitiatePayment)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Post("/orders/:id/confirm", orderHandler.Confirm)
	protected.Get("/orders/:id/events", orderHandler.GetOrderEvents)

	// Admin
	protected.Post("/users/:id/blocked", middleware.RequirePermission(rbac.PermBlockUser), userHandler.SetBlocked)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
