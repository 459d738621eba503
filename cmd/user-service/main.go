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
	"github.com/microshop/order-service/internal/user/handlers"
	"github.com/microshop/order-service/internal/user/repository"
	"github.com/microshop/order-service/internal/user/service"
	"github.com/microshop/order-service/pkg/messaging"
)

func main() {
	log.Println("🚀 User Service starting...")

	cfg, err := config.LoadUserService()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := initDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	defer db.Close()

	userRepo := repository.NewPostgresUserRepository(db)
	if err := userRepo.InitSchema(context.Background()); err != nil {
		log.Fatalf("Schema initialization error: %v", err)
	}

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

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	userService := service.NewUserService(userRepo, tokens, publisher)
	userHandler := handlers.NewUserHandler(userService)

	app := setupFiberApp()
	setupRoutes(app, userHandler)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 User Service closing...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("🌍 User Service working: http://localhost:%s", cfg.Port)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server start error: %v", err)
	}
}

func initDatabase(cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

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
		AppName:      "User Service v1.0",
		ErrorHandler: errorHandler,
	})

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

func setupRoutes(app *fiber.App, userHandler *handlers.UserHandler) {
	api := app.Group("/api/v1")

	api.Get("/health", userHandler.HealthCheck)

	users := api.Group("/users")
	users.Post("/register", userHandler.Register) // POST /api/v1/users/register
	users.Post("/login", userHandler.Login)       // POST /api/v1/users/login

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
