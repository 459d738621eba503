package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp(tokens *TokenManager) *fiber.App {
	app := fiber.New()
	app.Get("/protected", Middleware(tokens), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromCtx(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(principal)
	})
	return app
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	app := newProtectedApp(NewTokenManager("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsMalformedHeader(t *testing.T) {
	app := newProtectedApp(NewTokenManager("test-secret"))

	for _, header := range []string{"Token abc", "Bearer", "bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)
	}
}

func TestMiddlewareRejectsInvalidToken(t *testing.T) {
	app := newProtectedApp(NewTokenManager("test-secret"))

	forged, err := NewTokenManager("another-secret").Issue(Principal{ID: uuid.New()}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewarePassesPrincipal(t *testing.T) {
	tokens := NewTokenManager("test-secret")
	app := newProtectedApp(tokens)

	signed, err := tokens.Issue(Principal{
		ID:       uuid.New(),
		Email:    "alice@example.com",
		Username: "alice",
	}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
