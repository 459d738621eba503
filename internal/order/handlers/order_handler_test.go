package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microshop/order-service/internal/auth"
	"github.com/microshop/order-service/internal/order/domain"
	"github.com/microshop/order-service/internal/order/repository"
	"github.com/microshop/order-service/internal/order/service"
)

type memoryOrderRepository struct {
	orders   map[uuid.UUID]*domain.Order
	inserted []uuid.UUID
}

func newMemoryOrderRepository() *memoryOrderRepository {
	return &memoryOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *memoryOrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	stored := *order
	m.orders[order.ID] = &stored
	m.inserted = append(m.inserted, order.ID)
	readBack := stored
	return &readBack, nil
}

func (m *memoryOrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	clone := *order
	return &clone, nil
}

func (m *memoryOrderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	var result []*domain.Order
	for i := len(m.inserted) - 1; i >= 0; i-- {
		order := m.orders[m.inserted[i]]
		if order.UserID == userID {
			clone := *order
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *memoryOrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (bool, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return false, nil
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return true, nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(routingKey string, payload interface{}) error {
	return errors.New("broker unreachable")
}

type orderTestEnv struct {
	app    *fiber.App
	tokens *auth.TokenManager
}

func newOrderTestEnv(publisher service.EventPublisher) *orderTestEnv {
	tokens := auth.NewTokenManager("test-secret")
	orderService := service.NewOrderService(newMemoryOrderRepository(), publisher)
	handler := NewOrderHandler(orderService)

	app := fiber.New()
	api := app.Group("/api/v1")
	orders := api.Group("/orders", auth.Middleware(tokens))
	orders.Post("/", handler.CreateOrder)
	orders.Get("/", handler.ListOrders)
	orders.Get("/:id", handler.GetOrderByID)
	orders.Put("/:id/status", handler.UpdateOrderStatus)

	return &orderTestEnv{app: app, tokens: tokens}
}

func (e *orderTestEnv) token(t *testing.T, principal auth.Principal) string {
	t.Helper()
	signed, err := e.tokens.Issue(principal, time.Hour)
	require.NoError(t, err)
	return signed
}

func (e *orderTestEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Data
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	env := newOrderTestEnv(nil)
	principal := auth.Principal{ID: uuid.New(), Email: "u1@example.com", Username: "u1"}
	token := env.token(t, principal)

	// Place the order.
	resp := env.request(t, http.MethodPost, "/api/v1/orders", token, domain.CreateOrderRequest{
		ProductID:    "p1",
		Quantity:     3,
		ProductPrice: 9.99,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := decodeData(t, resp)
	orderID, ok := data["orderId"].(string)
	require.True(t, ok)
	order := data["order"].(map[string]interface{})
	assert.InDelta(t, 29.97, order["total"].(float64), 0.0001)
	assert.Equal(t, "pending", order["status"])

	// The projection must not leak the owner's email.
	_, leaked := order["user_email"]
	assert.False(t, leaked)
	_, leaked = order["userEmail"]
	assert.False(t, leaked)

	// Confirm it.
	resp = env.request(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", token, fiber.Map{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Read it back: confirmed, with a refreshed timestamp.
	resp = env.request(t, http.MethodGet, "/api/v1/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data struct {
			Status    string    `json:"status"`
			CreatedAt time.Time `json:"createdAt"`
			UpdatedAt time.Time `json:"updatedAt"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "confirmed", envelope.Data.Status)
	assert.True(t, envelope.Data.UpdatedAt.After(envelope.Data.CreatedAt))

	// A backward edge is rejected.
	resp = env.request(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", token, fiber.Map{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrderHTTPValidation(t *testing.T) {
	env := newOrderTestEnv(nil)
	token := env.token(t, auth.Principal{ID: uuid.New(), Email: "u1@example.com", Username: "u1"})

	resp := env.request(t, http.MethodPost, "/api/v1/orders", token, fiber.Map{"productId": "", "quantity": 2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/v1/orders", token, fiber.Map{"productId": "p1", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrderPublishFailureStillCreated(t *testing.T) {
	env := newOrderTestEnv(failingPublisher{})
	token := env.token(t, auth.Principal{ID: uuid.New(), Email: "u1@example.com", Username: "u1"})

	resp := env.request(t, http.MethodPost, "/api/v1/orders", token, domain.CreateOrderRequest{
		ProductID: "p1",
		Quantity:  1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := decodeData(t, resp)
	orderID := data["orderId"].(string)

	// Still retrievable: the failed publish did not roll anything back.
	resp = env.request(t, http.MethodGet, "/api/v1/orders/"+orderID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOrderRoutesRequireAuth(t *testing.T) {
	env := newOrderTestEnv(nil)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/orders/" + uuid.NewString()},
		{http.MethodPut, "/api/v1/orders/" + uuid.NewString() + "/status"},
	} {
		resp := env.request(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode,
			fmt.Sprintf("%s %s", tc.method, tc.path))
	}
}

func TestOrderOwnershipOverHTTP(t *testing.T) {
	env := newOrderTestEnv(nil)
	owner := auth.Principal{ID: uuid.New(), Email: "owner@example.com", Username: "owner"}
	intruder := auth.Principal{ID: uuid.New(), Email: "intruder@example.com", Username: "intruder"}

	resp := env.request(t, http.MethodPost, "/api/v1/orders", env.token(t, owner), domain.CreateOrderRequest{
		ProductID: "p1",
		Quantity:  1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := decodeData(t, resp)["orderId"].(string)

	intruderToken := env.token(t, intruder)

	resp = env.request(t, http.MethodGet, "/api/v1/orders/"+orderID, intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.request(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", intruderToken, fiber.Map{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The intruder's own listing stays empty.
	resp = env.request(t, http.MethodGet, "/api/v1/orders", intruderToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	orders, ok := data["orders"].([]interface{})
	if ok {
		assert.Empty(t, orders)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	env := newOrderTestEnv(nil)
	token := env.token(t, auth.Principal{ID: uuid.New(), Email: "u1@example.com", Username: "u1"})

	resp := env.request(t, http.MethodGet, "/api/v1/orders/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Non-uuid ids are indistinguishable from missing orders.
	resp = env.request(t, http.MethodGet, "/api/v1/orders/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	env := newOrderTestEnv(nil)
	principal := auth.Principal{ID: uuid.New(), Email: "u1@example.com", Username: "u1"}
	token := env.token(t, principal)

	resp := env.request(t, http.MethodPost, "/api/v1/orders", token, domain.CreateOrderRequest{
		ProductID: "p1",
		Quantity:  1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := decodeData(t, resp)["orderId"].(string)

	resp = env.request(t, http.MethodPut, "/api/v1/orders/"+orderID+"/status", token, fiber.Map{"status": "refunded"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
