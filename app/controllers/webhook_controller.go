package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HookFox/app/models"
	"github.com/ManuelReschke/HookFox/app/repository"
	"github.com/ManuelReschke/HookFox/internal/pkg/apperrors"
	"github.com/ManuelReschke/HookFox/internal/pkg/config"
	"github.com/ManuelReschke/HookFox/internal/pkg/constants"
	"github.com/ManuelReschke/HookFox/internal/pkg/payload"
	"github.com/ManuelReschke/HookFox/internal/pkg/signature"
)

const requestTimeout = 15 * time.Second

// ============================================================================
// WEBHOOK CONTROLLER - Repository Pattern
// ============================================================================

// WebhookController receives ActiveCampaign callbacks and serves the
// operational read endpoints.
type WebhookController struct {
	repo               repository.WebhookEventRepository
	secret             string
	driver             string
	logsDefaultLimit   int
	testEndpointActive bool
}

// NewWebhookController creates a new webhook controller with repository
func NewWebhookController(repo repository.WebhookEventRepository, cfg *config.Config) *WebhookController {
	return &WebhookController{
		repo:               repo,
		secret:             cfg.WebhookSecret,
		driver:             cfg.DBDriver,
		logsDefaultLimit:   repository.ClampLimit(cfg.LogsDefaultLimit, repository.DefaultRecentLimit),
		testEndpointActive: cfg.EnableTestEndpoint,
	}
}

// HandleActiveCampaignWebhook verifies the signature and stores the event.
func (wc *WebhookController) HandleActiveCampaignWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	sig := c.Get(signature.HeaderName)

	if !signature.Verify(rawBody, sig, wc.secret) {
		reason := "signature mismatch"
		if strings.TrimSpace(sig) == "" {
			reason = "missing signature header"
		}
		apperrors.Log(c.Path(), c.IP(), fmt.Errorf("%w: %s", apperrors.ErrAuthentication, reason))
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"ok": false, "error": "invalid_signature"})
	}

	return wc.ingest(c, rawBody, false)
}

// HandleTestWebhook runs the same pipeline without signature verification.
func (wc *WebhookController) HandleTestWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	log.Infof("[Webhook] Test endpoint hit from %s (%d bytes)", c.IP(), len(rawBody))
	return wc.ingest(c, rawBody, true)
}

// HandleTestWebhookInfo explains how to use the test endpoint.
func (wc *WebhookController) HandleTestWebhookInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":      "Test endpoint is working!",
		"method":       fiber.MethodGet,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"instructions": "Send a POST request with a JSON (or form-encoded) body to store it without signature verification",
		"database":     wc.driver,
	})
}

// ingest covers parse, extract, persist and respond for both webhook routes.
func (wc *WebhookController) ingest(c *fiber.Ctx, rawBody []byte, testMode bool) error {
	decoded := payload.Decode(rawBody, c.Get(fiber.HeaderContentType))
	if decoded.Err != nil {
		// stored anyway as a marker row
		apperrors.Log(c.Path(), c.IP(), decoded.Err)
	}

	event := &models.WebhookEvent{
		EventType:    decoded.EventType,
		Payload:      string(decoded.Document),
		ContactEmail: decoded.ContactEmail,
		ContactID:    decoded.ContactID,
		SourceIP:     c.IP(),
		ParseOK:      decoded.Parsed,
		TestMode:     testMode,
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	id, err := wc.repo.InsertEvent(ctx, event)
	if err != nil {
		apperrors.Log(c.Path(), c.IP(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "storage_failed"})
	}

	log.Infof("[Webhook] Stored %s event id=%d contact=%s test=%t parsed=%t",
		event.EventType, id, contactLabel(event), testMode, decoded.Parsed)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":         true,
		"id":         id,
		"event_type": event.EventType,
		"parsed":     decoded.Parsed,
	})
}

// HandleHealth reports process and storage status.
func (wc *WebhookController) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storageOK := wc.repo.Health(ctx)
	status, code := "ok", fiber.StatusOK
	if !storageOK {
		status, code = "degraded", fiber.StatusServiceUnavailable
		apperrors.Log(c.Path(), c.IP(), fmt.Errorf("%w: health query failed", apperrors.ErrStorage))
	}

	resp := fiber.Map{
		"status":     status,
		"storage_ok": storageOK,
		"database":   wc.driver,
		"service":    constants.ServiceName,
		"version":    constants.ServiceVersion,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if storageOK {
		// counts are informational, a failure here does not degrade health
		if total, err := wc.repo.Count(ctx); err == nil {
			resp["events_total"] = total
		}
		if recent, err := wc.repo.CountSince(ctx, time.Now().Add(-24*time.Hour)); err == nil {
			resp["events_last_24h"] = recent
		}
	}
	return c.Status(code).JSON(resp)
}

// HandleLogs returns the most recent events, newest first. Expects the admin
// gate in front of it.
func (wc *WebhookController) HandleLogs(c *fiber.Ctx) error {
	limit := wc.logsDefaultLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid_limit"})
		}
		limit = repository.ClampLimit(n, wc.logsDefaultLimit)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	events, err := wc.repo.RecentEvents(ctx, limit)
	if err != nil {
		apperrors.Log(c.Path(), c.IP(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "storage_failed"})
	}

	views := make([]webhookEventView, 0, len(events))
	for _, e := range events {
		views = append(views, newWebhookEventView(e))
	}
	return c.JSON(views)
}

// HandleStats returns the number of stored events per event type. Expects
// the admin gate in front of it.
func (wc *WebhookController) HandleStats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	stats, err := wc.repo.Stats(ctx)
	if err != nil {
		apperrors.Log(c.Path(), c.IP(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "storage_failed"})
	}
	return c.JSON(stats)
}

// HandleRoot describes the service.
func (wc *WebhookController) HandleRoot(c *fiber.Ctx) error {
	endpoints := fiber.Map{
		"webhook": constants.ActiveCampaignRoute,
		"health":  constants.HealthRoute,
		"logs":    constants.LogsRoute + " (requires auth)",
		"stats":   constants.StatsRoute + " (requires auth)",
	}
	if wc.testEndpointActive {
		endpoints["test"] = constants.TestRoute
	}

	return c.JSON(fiber.Map{
		"service":   constants.ServiceName,
		"status":    "running",
		"version":   constants.ServiceVersion,
		"database":  wc.driver,
		"endpoints": endpoints,
	})
}

// webhookEventView renders the stored payload as embedded JSON.
type webhookEventView struct {
	ID           uint            `json:"id"`
	EventType    string          `json:"event_type"`
	Payload      json.RawMessage `json:"payload"`
	ContactEmail string          `json:"contact_email,omitempty"`
	ContactID    string          `json:"contact_id,omitempty"`
	SourceIP     string          `json:"source_ip,omitempty"`
	ParseOK      bool            `json:"parse_ok"`
	TestMode     bool            `json:"test_mode"`
	ReceivedAt   string          `json:"received_at"`
}

func newWebhookEventView(e models.WebhookEvent) webhookEventView {
	raw := json.RawMessage(e.Payload)
	if !json.Valid(raw) {
		// rows written outside this service
		quoted, _ := json.Marshal(e.Payload)
		raw = quoted
	}
	return webhookEventView{
		ID:           e.ID,
		EventType:    e.EventType,
		Payload:      raw,
		ContactEmail: e.ContactEmail,
		ContactID:    e.ContactID,
		SourceIP:     e.SourceIP,
		ParseOK:      e.ParseOK,
		TestMode:     e.TestMode,
		ReceivedAt:   e.ReceivedAt.UTC().Format(time.RFC3339),
	}
}

func contactLabel(e *models.WebhookEvent) string {
	switch {
	case e.ContactEmail != "":
		return e.ContactEmail
	case e.ContactID != "":
		return e.ContactID
	default:
		return "-"
	}
}
