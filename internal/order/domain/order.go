package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseStatus maps a raw status value to the enum, reporting whether it is
// one of the five known statuses.
func ParseStatus(raw string) (OrderStatus, bool) {
	switch status := OrderStatus(raw); status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return status, true
	}
	return "", false
}

// statusTransitions is the forward-only order lifecycle. delivered and
// cancelled are terminal: no outgoing edges, and no self-loops anywhere.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	UserEmail string      `json:"user_email"`
	ProductID string      `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewOrder builds a pending order owned by the given user. The total is
// computed from the caller-supplied unit price; an absent price counts as 0,
// matching the upstream contract where pricing is resolved elsewhere.
func NewOrder(userID uuid.UUID, userEmail, productID string, quantity int, unitPrice float64) *Order {
	now := time.Now()

	return &Order{
		ID:        uuid.New(),
		UserID:    userID,
		UserEmail: userEmail,
		ProductID: productID,
		Quantity:  quantity,
		Total:     unitPrice * float64(quantity),
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateOrderRequest is the placement payload. ProductPrice is optional:
// when the caller omits it the unit price counts as 0.
type CreateOrderRequest struct {
	ProductID    string  `json:"productId"`
	Quantity     int     `json:"quantity"`
	ProductPrice float64 `json:"productPrice"`
}

// OrderCreatedEvent is the wire snapshot announcing a successful creation.
// Field names are part of the published contract; consumers rely on them.
type OrderCreatedEvent struct {
	OrderID   uuid.UUID   `json:"orderId"`
	UserID    uuid.UUID   `json:"userId"`
	UserEmail string      `json:"userEmail"`
	Username  string      `json:"username"`
	ProductID string      `json:"productId"`
	Quantity  int         `json:"quantity"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}
