package middleware

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/HookFox/internal/pkg/apperrors"
)

// AdminTokenMiddleware guards operational endpoints with a static bearer
// token. Requests without the right token never reach the handler, so no
// storage access happens for them.
func AdminTokenMiddleware(adminToken string) fiber.Handler {
	expected := []byte(strings.TrimSpace(adminToken))

	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return rejectAdmin(c, "missing bearer token")
		}
		if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			return rejectAdmin(c, "invalid bearer token")
		}
		return c.Next()
	}
}

func rejectAdmin(c *fiber.Ctx, reason string) error {
	apperrors.Log(c.Path(), c.IP(), fmt.Errorf("%w: %s", apperrors.ErrAuthentication, reason))
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "unauthorized"})
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
