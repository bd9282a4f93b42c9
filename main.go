package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"farmtoclick/internal/config"
	"farmtoclick/internal/database"
	"farmtoclick/internal/handlers"
	"farmtoclick/internal/middleware"
	"farmtoclick/internal/repositories"
	"farmtoclick/internal/services"
	"farmtoclick/pkg/rabbitmq"
)

func main() {
	cfg := config.LoadServer(viper.GetViper())

	db, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// Without a broker, order events are delivered in-process by newApp.
	var events services.EventPublisher
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.Printf("RabbitMQ unavailable, delivering order events in-process: %v", err)
	} else {
		defer mqClient.Close()
		events = mqClient

		notifications := services.NewNotificationService(repositories.NewGORMNotificationRepository(db))
		messageHandler := func(msg amqp.Delivery) error {
			return notifications.HandleOrderEvent(msg.RoutingKey, msg.Body)
		}
		if err := mqClient.ConsumeOrderEvents(messageHandler); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	app, err := newApp(db, cfg, events)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}
	log.Printf("Starting server on port %s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.Port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// newApp wires repositories, services and handlers onto a Fiber app.
// When events is nil, order events go straight to the notification service.
func newApp(db *gorm.DB, cfg config.Server, events services.EventPublisher) (*fiber.App, error) {
	uploads, err := handlers.NewUploader(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	notificationRepo := repositories.NewGORMNotificationRepository(db)

	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	notificationService := services.NewNotificationService(notificationRepo)

	eventsState := "connected"
	if events == nil {
		events = services.PublisherFunc(notificationService.HandleOrderEvent)
		eventsState = "in-process"
	}
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo, events)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return nil, err
		}
	}

	app := fiber.New(fiber.Config{
		AppName:   "farmtoclick",
		BodyLimit: 10 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	auth := middleware.AuthRequired(authService)
	api := app.Group("/api")

	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewProfileHandler(authService, uploads).RegisterRoutes(api, auth)
	handlers.NewProductHandler(productService).RegisterRoutes(api, auth)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, auth)
	handlers.NewRiderHandler(orderService, uploads).RegisterRoutes(api, auth)
	handlers.NewAdminHandler(authService).RegisterRoutes(api, auth)
	handlers.NewCartHandler(cartService).RegisterRoutes(api, auth)
	handlers.NewNotificationHandler(notificationService).RegisterRoutes(api, auth)

	app.Static(handlers.UploadURLPrefix, cfg.UploadDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		dbState := "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			dbState = "unavailable"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": dbState,
			"events":   eventsState,
		})
	})

	return app, nil
}
