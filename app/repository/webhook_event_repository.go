package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/HookFox/app/models"
	"github.com/ManuelReschke/HookFox/internal/pkg/apperrors"
)

const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 500
)

// ErrStorage marks every failure coming out of the storage layer so handlers
// can tell it apart from authentication and parse problems.
var ErrStorage = apperrors.ErrStorage

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Initialize creates the webhook_events table and its indexes if missing.
func (r *webhookEventRepository) Initialize(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.WebhookEvent{}); err != nil {
		return storageErr("initialize", err)
	}
	return nil
}

// InsertEvent stores one event and returns its assigned id. ID and ReceivedAt
// are always assigned here.
func (r *webhookEventRepository) InsertEvent(ctx context.Context, event *models.WebhookEvent) (uint, error) {
	event.ID = 0
	event.EventType = truncate(strings.TrimSpace(event.EventType), models.EventTypeMaxLen)
	if event.EventType == "" {
		event.EventType = models.EventTypeUnknown
	}
	// sender controlled, the full value stays in Payload
	event.ContactEmail = truncate(event.ContactEmail, models.ContactEmailMaxLen)
	event.ContactID = truncate(event.ContactID, models.ContactIDMaxLen)
	event.SourceIP = truncate(event.SourceIP, models.SourceIPMaxLen)
	event.ReceivedAt = r.now()

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return 0, storageErr("insert event", err)
	}
	return event.ID, nil
}

// RecentEvents returns the newest events first.
func (r *webhookEventRepository) RecentEvents(ctx context.Context, limit int) ([]models.WebhookEvent, error) {
	limit = ClampLimit(limit, DefaultRecentLimit)

	var events []models.WebhookEvent
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, storageErr("recent events", err)
	}
	return events, nil
}

// Stats counts events per event type.
func (r *webhookEventRepository) Stats(ctx context.Context) (map[string]int64, error) {
	var rows []models.EventTypeCount
	err := r.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Select("event_type, COUNT(*) AS count").
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("stats", err)
	}

	stats := make(map[string]int64, len(rows))
	for _, row := range rows {
		stats[row.EventType] = row.Count
	}
	return stats, nil
}

// Count returns the total number of stored events
func (r *webhookEventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.WebhookEvent{}).Count(&count).Error; err != nil {
		return 0, storageErr("count", err)
	}
	return count, nil
}

// CountSince returns the number of events received after since
func (r *webhookEventRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("received_at > ?", since.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, storageErr("count since", err)
	}
	return count, nil
}

// Each walks all events in id order, batchSize rows at a time.
func (r *webhookEventRepository) Each(ctx context.Context, batchSize int, fn func(models.WebhookEvent) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	var (
		batch []models.WebhookEvent
		fnErr error
	)
	res := r.db.WithContext(ctx).FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		for _, event := range batch {
			if fnErr = fn(event); fnErr != nil {
				return fnErr
			}
		}
		return nil
	})
	if fnErr != nil {
		return fnErr
	}
	if res.Error != nil {
		return storageErr("iterate events", res.Error)
	}
	return nil
}

// Health runs a trivial round-trip query.
func (r *webhookEventRepository) Health(ctx context.Context) bool {
	if err := r.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		log.Warnf("[Database] Health check failed: %v", err)
		return false
	}
	return true
}

// ClampLimit maps non-positive values to def and caps at MaxRecentLimit.
func ClampLimit(limit, def int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	return limit
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
