package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/opechapo/kara-backend/internal/config"
	"github.com/opechapo/kara-backend/internal/db"
	"github.com/opechapo/kara-backend/internal/events"
	apphttp "github.com/opechapo/kara-backend/internal/http"
	"github.com/opechapo/kara-backend/internal/http/handlers"
	"github.com/opechapo/kara-backend/internal/repositories"
	"github.com/opechapo/kara-backend/internal/services"
	"github.com/opechapo/kara-backend/internal/storage"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Uploads
	uploadStore, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("failed to init upload storage", zap.Error(err))
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	storeRepo := repositories.NewStoreRepo(pool)
	collectionRepo := repositories.NewCollectionRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	cartRepo := repositories.NewCartRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)
	messageRepo := repositories.NewMessageRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	notificationService := services.NewNotificationService(notificationRepo, publisher, log)
	userService := services.NewUserService(userRepo, auditRepo, cfg, log)
	storeService := services.NewStoreService(storeRepo, auditRepo, log)
	collectionService := services.NewCollectionService(collectionRepo, storeRepo, log)
	productService := services.NewProductService(productRepo, storeRepo, collectionRepo, escrowRepo, cartRepo, notificationService, auditRepo, log)
	escrowService := services.NewEscrowService(escrowRepo, productRepo, userRepo, auditRepo, notificationService, publisher, log)
	cartService := services.NewCartService(cartRepo, productRepo, notificationService, log)
	chatService := services.NewChatService(messageRepo, productRepo, publisher, log)
	searchService := services.NewSearchService(productRepo, storeRepo, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, log)
	userHandler := handlers.NewUserHandler(userService, uploadStore, log)
	storeHandler := handlers.NewStoreHandler(storeService, uploadStore, log)
	collectionHandler := handlers.NewCollectionHandler(collectionService, uploadStore, log)
	productHandler := handlers.NewProductHandler(productService, uploadStore, log)
	escrowHandler := handlers.NewEscrowHandler(escrowService, log)
	cartHandler := handlers.NewCartHandler(cartService, log)
	notificationHandler := handlers.NewNotificationHandler(notificationService, log)
	chatHandler := handlers.NewChatHandler(chatService, log)
	searchHandler := handlers.NewSearchHandler(searchService, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, userRepo,
		authHandler, userHandler, storeHandler, collectionHandler, productHandler,
		escrowHandler, cartHandler, notificationHandler, chatHandler, searchHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
