package constants

// Route constants
const (
	RootRoute           = "/"
	WebhookGroup        = "/webhook"
	ActiveCampaignRoute = WebhookGroup + "/activecampaign"
	HealthRoute         = WebhookGroup + "/health"
	TestRoute           = WebhookGroup + "/test"
	LogsRoute           = WebhookGroup + "/logs"
	StatsRoute          = WebhookGroup + "/stats"
	MetricsRoute        = "/metrics"
	DocsBasePath        = "/docs/api/"
)

// Service identity reported by / and /webhook/health
const (
	ServiceName    = "ActiveCampaign Webhook Handler"
	ServiceVersion = "1.0.0"
)
