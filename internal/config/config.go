package config

import (
	"fmt"
	"os"
)

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func (d Database) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

type OrderService struct {
	Port          string
	Database      Database
	JWTSecret     string
	EventsEnabled bool
}

type UserService struct {
	Port          string
	Database      Database
	JWTSecret     string
	EventsEnabled bool
}

// LoadOrderService reads the order service configuration from the environment.
// JWT_SECRET has no default: the token contract is shared with the user service
// and a guessable fallback would silently break it.
func LoadOrderService() (*OrderService, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return &OrderService{
		Port:          getEnvOrDefault("PORT", "8001"),
		Database:      loadDatabase("order_db"),
		JWTSecret:     secret,
		EventsEnabled: getEnvOrDefault("RABBITMQ_ENABLED", "true") != "false",
	}, nil
}

func LoadUserService() (*UserService, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return &UserService{
		Port:          getEnvOrDefault("PORT", "8002"),
		Database:      loadDatabase("user_db"),
		JWTSecret:     secret,
		EventsEnabled: getEnvOrDefault("RABBITMQ_ENABLED", "true") != "false",
	}, nil
}

func loadDatabase(defaultName string) Database {
	return Database{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		Name:     getEnvOrDefault("DB_NAME", defaultName),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
