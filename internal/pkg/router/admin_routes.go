package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/ManuelReschke/HookFox/app/controllers"
	"github.com/ManuelReschke/HookFox/internal/pkg/config"
	"github.com/ManuelReschke/HookFox/internal/pkg/constants"
	"github.com/ManuelReschke/HookFox/internal/pkg/middleware"
)

// AdminRouter serves the bearer-token protected operational endpoints.
type AdminRouter struct {
	cfg      *config.Config
	webhooks *controllers.WebhookController
}

func NewAdminRouter(cfg *config.Config, webhooks *controllers.WebhookController) *AdminRouter {
	return &AdminRouter{cfg: cfg, webhooks: webhooks}
}

func (h AdminRouter) InstallRouter(app *fiber.App) {
	// limiter runs first so token guessing is throttled too
	guard := []fiber.Handler{
		middleware.AdminRateLimiter(h.cfg),
		middleware.AdminTokenMiddleware(h.cfg.AdminToken),
	}

	app.Get(constants.LogsRoute, append(guard, h.webhooks.HandleLogs)...)
	app.Get(constants.StatsRoute, append(guard, h.webhooks.HandleStats)...)
	app.Get(constants.MetricsRoute, append(guard, monitor.New(monitor.Config{Title: constants.ServiceName}))...)
}
