package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/microshop/order-service/internal/auth"
	"github.com/microshop/order-service/internal/user/domain"
	"github.com/microshop/order-service/internal/user/repository"
)

const (
	userRegisteredRoutingKey = "user.registered"
	tokenTTL                 = time.Hour
)

// ErrInvalidCredentials covers both unknown email and wrong password; login
// responses must not distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenManager
	publisher EventPublisher
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, publisher EventPublisher) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		publisher: publisher,
	}
}

func (s *UserService) Register(ctx context.Context, request domain.RegisterRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("password hashing error: %v", err)
	}

	user := domain.NewUser(request.Username, request.Email, string(hash))

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publishUserRegistered(user)

	return user, nil
}

// publishUserRegistered follows the same isolation policy as order events:
// the account is already created, a failed publish is logged and swallowed.
func (s *UserService) publishUserRegistered(user *domain.User) {
	if s.publisher == nil {
		return
	}

	event := domain.UserRegisteredEvent{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}

	if err := s.publisher.Publish(userRegisteredRoutingKey, event); err != nil {
		log.Printf("Failed to publish user registered event: UserID=%s, error=%v", user.ID, err)
		return
	}

	log.Printf("User registered and event published: %s", user.ID)
}

func (s *UserService) Login(ctx context.Context, request domain.LoginRequest) (string, error) {
	user, err := s.users.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("login error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Principal{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, tokenTTL)
	if err != nil {
		return "", fmt.Errorf("token issue error: %w", err)
	}

	return token, nil
}
