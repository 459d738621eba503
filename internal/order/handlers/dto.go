package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/microshop/order-service/internal/order/domain"
)

// OrderResponse is the caller-safe projection of an order. The owner's email
// is deliberately not echoed back.
type OrderResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	Total     float64   `json:"total"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func mapOrder(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:        order.ID,
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
		Total:     order.Total,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

func mapOrders(orders []*domain.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = mapOrder(order)
	}
	return responses
}
