package repository

import (
	"context"
	"errors"

	"github.com/microshop/order-service/internal/user/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error

	// GetByEmail returns the user or ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
