package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/HookFox/app/controllers"
	"github.com/ManuelReschke/HookFox/internal/pkg/config"
)

// WebhookRouter serves the unauthenticated surface: the signed webhook
// endpoint, health, the optional test endpoint and the service info.
type WebhookRouter struct {
	cfg      *config.Config
	webhooks *controllers.WebhookController
}

func (h WebhookRouter) InstallRouter(app *fiber.App) {
	h.registerWebhookRoutes(app)
}

func NewWebhookRouter(cfg *config.Config, webhooks *controllers.WebhookController) *WebhookRouter {
	return &WebhookRouter{cfg: cfg, webhooks: webhooks}
}
