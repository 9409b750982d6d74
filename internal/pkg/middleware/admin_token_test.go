package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/HookFox/internal/pkg/config"
)

func newAdminApp(token string, reached *bool) *fiber.App {
	app := fiber.New()
	app.Get("/admin", AdminTokenMiddleware(token), func(c *fiber.Ctx) error {
		*reached = true
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAdminTokenMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer admin123", want: fiber.StatusNoContent},
		{name: "lowercase scheme", header: "bearer admin123", want: fiber.StatusNoContent},
		{name: "missing", header: "", want: fiber.StatusUnauthorized},
		{name: "wrong token", header: "Bearer admin124", want: fiber.StatusUnauthorized},
		{name: "prefix of token", header: "Bearer admin", want: fiber.StatusUnauthorized},
		{name: "no scheme", header: "admin123", want: fiber.StatusUnauthorized},
		{name: "basic scheme", header: "Basic admin123", want: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			app := newAdminApp("admin123", &reached)

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, tt.want == fiber.StatusNoContent, reached)
		})
	}
}

func TestAdminTokenMiddleware_EmptyConfiguredTokenRejectsAll(t *testing.T) {
	reached := false
	app := newAdminApp("", &reached)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer ")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, reached)
}

func TestAdminRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", AdminRateLimiter(&config.Config{AdminRateLimit: 2}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestAdminRateLimiter_Disabled(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", AdminRateLimiter(&config.Config{AdminRateLimit: 0}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}
