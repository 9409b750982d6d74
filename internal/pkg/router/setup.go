package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/HookFox/app/controllers"
	"github.com/ManuelReschke/HookFox/app/repository"
	"github.com/ManuelReschke/HookFox/internal/pkg/config"
)

// Router registers one group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, cfg *config.Config, repo repository.WebhookEventRepository) {
	webhooks := controllers.NewWebhookController(repo, cfg)
	setup(app, NewWebhookRouter(cfg, webhooks), NewAdminRouter(cfg, webhooks))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
