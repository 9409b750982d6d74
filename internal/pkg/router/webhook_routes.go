package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HookFox/internal/pkg/constants"
)

func (h WebhookRouter) registerWebhookRoutes(app *fiber.App) {
	app.Get(constants.RootRoute, h.webhooks.HandleRoot)

	// ActiveCampaign callbacks (signature-verified in controller)
	app.Post(constants.ActiveCampaignRoute, h.webhooks.HandleActiveCampaignWebhook)
	app.Get(constants.HealthRoute, h.webhooks.HandleHealth)

	// Unsigned test endpoint for local development only
	if h.cfg.EnableTestEndpoint {
		app.Get(constants.TestRoute, h.webhooks.HandleTestWebhookInfo)
		app.Post(constants.TestRoute, h.webhooks.HandleTestWebhook)
		log.Warnf("[Router] Test endpoint %s is enabled, payloads there are stored without signature checks", constants.TestRoute)
	}
}
