package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/lib/pq"

	"github.com/microshop/order-service/internal/auth"
	"github.com/microshop/order-service/internal/config"
	"github.com/microshop/order-service/internal/order/handlers"
	"github.com/microshop/order-service/internal/order/repository"
	"github.com/microshop/order-service/internal/order/service"
	"github.com/microshop/order-service/pkg/messaging"
)

func main() {
	log.Println("🚀 Order Service starting...")

	cfg, err := config.LoadOrderService()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Database connection
	db, err := initDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	defer db.Close()

	orderRepo := repository.NewPostgresOrderRepository(db)
	if err := orderRepo.InitSchema(context.Background()); err != nil {
		log.Fatalf("Schema initialization error: %v", err)
	}

	// RabbitMQ connection. Events are optional: when disabled or unreachable
	// the service runs without a publisher and orders are still accepted.
	var publisher service.EventPublisher
	if cfg.EventsEnabled {
		rabbitClient := messaging.NewRabbitMQClient(messaging.NewConfig())
		if err := rabbitClient.Connect(); err != nil {
			log.Printf("⚠️ RabbitMQ unavailable, running without event publishing: %v", err)
		} else {
			defer rabbitClient.Close()
			publisher = messaging.NewPublisher(rabbitClient)
		}
	} else {
		log.Println("Event publishing disabled by configuration")
	}

	// Dependencies injection
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	orderService := service.NewOrderService(orderRepo, publisher)
	orderHandler := handlers.NewOrderHandler(orderService)

	app := setupFiberApp()
	setupRoutes(app, orderHandler, tokens)

	// Graceful shutdown setup
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 Order Service closing...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("🌍 Order Service working: http://localhost:%s", cfg.Port)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server start error: %v", err)
	}
}

func initDatabase(cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	// Bounded pool: a request that cannot get a connection fails fast
	// instead of queueing forever.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	log.Printf("✅ Database connection established: %s", cfg.Name)
	return db, nil
}

func setupFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Order Service v1.0",
		ErrorHandler: errorHandler,
	})

	// Middlewares
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))

	return app
}

func setupRoutes(app *fiber.App, orderHandler *handlers.OrderHandler, tokens *auth.TokenManager) {
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", orderHandler.HealthCheck)

	// Order routes, all behind the auth gate
	orders := api.Group("/orders", auth.Middleware(tokens))
	orders.Post("/", orderHandler.CreateOrder)                // POST /api/v1/orders
	orders.Get("/", orderHandler.ListOrders)                  // GET /api/v1/orders
	orders.Get("/:id", orderHandler.GetOrderByID)             // GET /api/v1/orders/:id
	orders.Put("/:id/status", orderHandler.UpdateOrderStatus) // PUT /api/v1/orders/:id/status

	// Route not found
	app.Use("*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
