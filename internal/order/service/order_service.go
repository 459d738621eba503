package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/microshop/order-service/internal/auth"
	"github.com/microshop/order-service/internal/order/domain"
	"github.com/microshop/order-service/internal/order/repository"
)

const orderCreatedRoutingKey = "order.created"

var (
	ErrProductRequired   = errors.New("product id is required")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrNotOrderOwner     = errors.New("order belongs to another user")
	ErrInvalidStatus     = errors.New("invalid status value")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// EventPublisher delivers a JSON payload under a routing key. The concrete
// implementation lives in pkg/messaging; tests supply fakes.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// OrderService orchestrates order creation and lifecycle updates. The store
// write and the event publish have no shared transaction: a store failure
// aborts the request, a publish failure after a committed write is logged
// and swallowed. Callers are promised a durable record, not event delivery.
type OrderService struct {
	orders    repository.OrderRepository
	publisher EventPublisher
}

// NewOrderService wires the workflow. A nil publisher disables event
// emission; that is a valid configuration, not an error.
func NewOrderService(orders repository.OrderRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orders:    orders,
		publisher: publisher,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, principal auth.Principal, request domain.CreateOrderRequest) (*domain.Order, error) {
	if strings.TrimSpace(request.ProductID) == "" {
		return nil, ErrProductRequired
	}
	if request.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	order := domain.NewOrder(
		principal.ID,
		principal.Email,
		request.ProductID,
		request.Quantity,
		request.ProductPrice,
	)

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("order creation error: %w", err)
	}

	s.publishOrderCreated(created, principal.Username)

	return created, nil
}

// publishOrderCreated makes a single best-effort publish attempt. The order
// is already committed; a failed publish must not undo it or fail the caller.
func (s *OrderService) publishOrderCreated(order *domain.Order, username string) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		UserEmail: order.UserEmail,
		Username:  username,
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
		Total:     order.Total,
		Status:    order.Status,
		Timestamp: time.Now(),
	}

	if err := s.publisher.Publish(orderCreatedRoutingKey, event); err != nil {
		// Order is still created even though the event was not delivered.
		log.Printf("Failed to publish order created event: OrderID=%s, error=%v", order.ID, err)
		return
	}

	log.Printf("Order created and event published: %s", order.ID)
}

func (s *OrderService) GetOrder(ctx context.Context, principal auth.Principal, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != principal.ID {
		return nil, ErrNotOrderOwner
	}

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, principal auth.Principal) ([]*domain.Order, error) {
	orders, err := s.orders.GetByUserID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("orders retrieval error: %w", err)
	}
	return orders, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, principal auth.Principal, orderID uuid.UUID, rawStatus string) error {
	status, ok := domain.ParseStatus(rawStatus)
	if !ok {
		return ErrInvalidStatus
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.UserID != principal.ID {
		return ErrNotOrderOwner
	}

	if !domain.CanTransition(order.Status, status) {
		return ErrIllegalTransition
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return fmt.Errorf("order status update error: %w", err)
	}
	if !updated {
		return repository.ErrOrderNotFound
	}

	log.Printf("Order status updated: OrderID=%s, %s -> %s", orderID, order.Status, status)
	return nil
}
