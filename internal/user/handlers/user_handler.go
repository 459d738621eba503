package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/microshop/order-service/internal/user/domain"
	"github.com/microshop/order-service/internal/user/repository"
	"github.com/microshop/order-service/internal/user/service"
	"github.com/microshop/order-service/pkg/httpx"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var request domain.RegisterRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	if request.Username == "" || request.Email == "" || request.Password == "" {
		return httpx.BadRequestResponse(c, "Username, email, and password are required", nil)
	}

	user, err := h.userService.Register(c.UserContext(), request)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return httpx.ConflictResponse(c, "Email already exists", nil)
		}
		log.Printf("User registration error: %v", err)
		return httpx.InternalServerErrorResponse(c, "Failed to register user")
	}

	return httpx.CreatedResponse(c, "User created", fiber.Map{
		"userId": user.ID,
	})
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var request domain.LoginRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	if request.Email == "" || request.Password == "" {
		return httpx.BadRequestResponse(c, "Email and password are required", nil)
	}

	token, err := h.userService.Login(c.UserContext(), request)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return httpx.UnauthorizedResponse(c, "Invalid credentials")
		}
		log.Printf("User login error: %v", err)
		return httpx.InternalServerErrorResponse(c, "Failed to log in")
	}

	return httpx.SuccessResponse(c, "Login successful", fiber.Map{
		"token": token,
	})
}

func (h *UserHandler) HealthCheck(c *fiber.Ctx) error {
	return httpx.SuccessResponse(c, "User service is healthy", fiber.Map{
		"service": "user-service",
		"status":  "healthy",
	})
}
