package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/microshop/order-service/internal/auth"
	"github.com/microshop/order-service/internal/order/domain"
	"github.com/microshop/order-service/internal/order/repository"
	"github.com/microshop/order-service/internal/order/service"
	"github.com/microshop/order-service/pkg/httpx"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromCtx(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Access token required")
	}

	var request domain.CreateOrderRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	order, err := h.orderService.CreateOrder(c.UserContext(), principal, request)
	if err != nil {
		if errors.Is(err, service.ErrProductRequired) || errors.Is(err, service.ErrInvalidQuantity) {
			return httpx.BadRequestResponse(c, "Product ID and valid quantity are required", nil)
		}
		log.Printf("Order creation error: %v", err)
		return httpx.InternalServerErrorResponse(c, "Failed to create order")
	}

	return httpx.CreatedResponse(c, "Order placed successfully", fiber.Map{
		"orderId": order.ID,
		"order":   mapOrder(order),
	})
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromCtx(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Access token required")
	}

	orders, err := h.orderService.ListOrders(c.UserContext(), principal)
	if err != nil {
		log.Printf("Orders retrieval error: %v", err)
		return httpx.InternalServerErrorResponse(c, "Failed to retrieve orders")
	}

	return httpx.SuccessResponse(c, "Orders retrieved successfully", fiber.Map{
		"orders": mapOrders(orders),
	})
}

func (h *OrderHandler) GetOrderByID(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromCtx(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Access token required")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.NotFoundResponse(c, "Order not found")
	}

	order, err := h.orderService.GetOrder(c.UserContext(), principal, orderID)
	if err != nil {
		return h.mapOrderError(c, err, "Failed to retrieve order")
	}

	return httpx.SuccessResponse(c, "Order retrieved successfully", mapOrder(order))
}

func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromCtx(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Access token required")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.NotFoundResponse(c, "Order not found")
	}

	var request UpdateStatusRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	if err := h.orderService.UpdateStatus(c.UserContext(), principal, orderID, request.Status); err != nil {
		return h.mapOrderError(c, err, "Failed to update order status")
	}

	return httpx.SuccessResponse(c, "Order status updated successfully", nil)
}

func (h *OrderHandler) HealthCheck(c *fiber.Ctx) error {
	return httpx.SuccessResponse(c, "Order service is healthy", fiber.Map{
		"service": "order-service",
		"status":  "healthy",
	})
}

func (h *OrderHandler) mapOrderError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		return httpx.NotFoundResponse(c, "Order not found")
	case errors.Is(err, service.ErrNotOrderOwner):
		return httpx.ForbiddenResponse(c, "Access denied")
	case errors.Is(err, service.ErrInvalidStatus):
		return httpx.BadRequestResponse(c, "Invalid status value", nil)
	case errors.Is(err, service.ErrIllegalTransition):
		return httpx.BadRequestResponse(c, "Illegal status transition", nil)
	default:
		log.Printf("%s: %v", fallback, err)
		return httpx.InternalServerErrorResponse(c, fallback)
	}
}
