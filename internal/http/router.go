package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/opechapo/kara-backend/internal/config"
	"github.com/opechapo/kara-backend/internal/http/handlers"
	"github.com/opechapo/kara-backend/internal/middleware"
	"github.com/opechapo/kara-backend/internal/repositories"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	userRepo *repositories.UserRepo,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	storeHandler *handlers.StoreHandler,
	collectionHandler *handlers.CollectionHandler,
	productHandler *handlers.ProductHandler,
	escrowHandler *handlers.EscrowHandler,
	cartHandler *handlers.CartHandler,
	notificationHandler *handlers.NotificationHandler,
	chatHandler *handlers.ChatHandler,
	searchHandler *handlers.SearchHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Uploaded images
	app.Static("/uploads", cfg.UploadDir)

	requireAuth := middleware.AuthMiddleware(cfg, log)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg)
	requireAdmin := middleware.AdminMiddleware(userRepo)

	app.Use(middleware.RateLimitMiddleware(rdb, 300, time.Minute))

	// Wallet auth (public)
	app.Get("/user/:walletAddress/nonce", authHandler.GetNonce)
	app.Post("/user/connect-wallet", authHandler.ConnectWallet)

	// Profile
	app.Get("/user/me", requireAuth, userHandler.GetMe)
	app.Put("/user/me", requireAuth, userHandler.UpdateMe)
	app.Post("/user/logout", requireAuth, userHandler.Logout)

	// Stores
	app.Get("/stores/featured", storeHandler.ListFeatured)
	app.Get("/stores/all", optionalAuth, storeHandler.ListAll)
	app.Get("/stores/my", requireAuth, storeHandler.ListMine)
	app.Get("/stores/:id", storeHandler.GetByID)
	app.Post("/stores", requireAuth, storeHandler.Create)
	app.Put("/stores/:id", requireAuth, storeHandler.Update)
	app.Delete("/stores/:id", requireAuth, storeHandler.Delete)

	// Collections
	app.Get("/collections", collectionHandler.ListAll)
	app.Get("/collections/my", requireAuth, collectionHandler.ListMine)
	app.Get("/collections/store/:storeId", collectionHandler.ListByStore)
	app.Get("/collections/:id", collectionHandler.GetByID)
	app.Post("/collections", requireAuth, collectionHandler.Create)
	app.Put("/collections/:id", requireAuth, collectionHandler.Update)
	app.Delete("/collections/:id", requireAuth, collectionHandler.Delete)

	// Products
	app.Get("/products/latest", productHandler.ListLatest)
	app.Get("/products/categories", productHandler.ListCategories)
	app.Get("/products/category/:category", productHandler.ListByCategory)
	app.Get("/products/store/:storeId", productHandler.ListByStore)
	app.Get("/products/my", requireAuth, productHandler.ListMine)
	app.Get("/products", productHandler.List)
	app.Get("/products/:id", productHandler.GetByID)
	app.Post("/products", requireAuth, productHandler.Create)
	app.Put("/products/:id", requireAuth, productHandler.Update)
	app.Delete("/products/:id", requireAuth, productHandler.Delete)

	// Escrow
	app.Post("/escrow/create", requireAuth, escrowHandler.Create)
	app.Get("/escrow/user", requireAuth, escrowHandler.ListForUser)
	app.Post("/escrow/release/:id", requireAuth, escrowHandler.Release)
	app.Post("/escrow/refund/:id", requireAuth, escrowHandler.Refund)
	app.Get("/escrow/:id", requireAuth, escrowHandler.GetByID)
	app.Patch("/escrow/:id", requireAuth, escrowHandler.Patch)

	// Cart
	app.Get("/cart", requireAuth, cartHandler.Get)
	app.Post("/cart/items", requireAuth, cartHandler.AddItem)
	app.Delete("/cart/items/:productId", requireAuth, cartHandler.RemoveItem)
	app.Delete("/cart", requireAuth, cartHandler.Clear)
	app.Post("/cart/cleanup", requireAuth, cartHandler.Cleanup)
	app.Post("/cart/cleanup-all", requireAuth, requireAdmin, cartHandler.CleanupAll)

	// Notifications
	app.Get("/notifications/count", requireAuth, notificationHandler.CountUnread)
	app.Get("/notifications", requireAuth, notificationHandler.List)
	app.Get("/notifications/all", requireAuth, requireAdmin, notificationHandler.ListAll)
	app.Put("/notifications/read-all", requireAuth, notificationHandler.MarkAllRead)
	app.Put("/notifications/:id/read", requireAuth, notificationHandler.MarkRead)
	app.Put("/notifications/:id/unread", requireAuth, notificationHandler.MarkUnread)

	// Chat
	app.Post("/messages", requireAuth, chatHandler.Send)
	app.Get("/messages/product/:productId", requireAuth, chatHandler.History)

	// Search & categories
	app.Get("/search", searchHandler.Search)
	app.Get("/categories", searchHandler.Categories)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
