package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/microshop/order-service/internal/order/domain"
)

var (
	// ErrOrderNotFound is returned by point lookups when no row matches.
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicateOrderID is returned when an insert hits the primary key.
	// With uuid generation this is an impossible path; callers treat it as fatal.
	ErrDuplicateOrderID = errors.New("duplicate order id")
)

// OrderRepository is the durable keyed store for orders. It is a dumb
// persistence layer: lifecycle rules live in the service, not here.
type OrderRepository interface {
	// Create inserts the order and reads the row back so the caller sees
	// the server-assigned timestamps.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)

	// GetByID returns the order or ErrOrderNotFound.
	GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)

	// GetByUserID returns the user's orders, newest first.
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)

	// UpdateStatus applies the status and refreshes updated_at in a single
	// conditional update. It reports whether a row was affected.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (bool, error)
}
