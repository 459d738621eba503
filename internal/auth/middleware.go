package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/microshop/order-service/pkg/httpx"
)

const principalLocalKey = "auth.principal"

// Middleware verifies the Authorization header and stores the resulting
// Principal in the request locals. Requests without a valid bearer token
// never reach the protected handlers.
func Middleware(tokens *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return httpx.UnauthorizedResponse(c, "Access token required")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return httpx.UnauthorizedResponse(c, "Access token required")
		}

		principal, err := tokens.Verify(parts[1])
		if err != nil {
			return httpx.UnauthorizedResponse(c, "Invalid or expired token")
		}

		c.Locals(principalLocalKey, *principal)
		return c.Next()
	}
}

// PrincipalFromCtx returns the principal stored by Middleware. The second
// return value is false on routes that skipped the middleware.
func PrincipalFromCtx(c *fiber.Ctx) (Principal, bool) {
	principal, ok := c.Locals(principalLocalKey).(Principal)
	return principal, ok
}
