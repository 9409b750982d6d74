package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/HookFox/app/models"
	"gorm.io/gorm"
)

// WebhookEventRepository is the storage adapter for received webhooks. The
// same contract holds for every supported SQL backend.
type WebhookEventRepository interface {
	Initialize(ctx context.Context) error
	InsertEvent(ctx context.Context, event *models.WebhookEvent) (uint, error)
	RecentEvents(ctx context.Context, limit int) ([]models.WebhookEvent, error)
	Stats(ctx context.Context) (map[string]int64, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	Each(ctx context.Context, batchSize int, fn func(models.WebhookEvent) error) error
	Health(ctx context.Context) bool
}

// Repositories holds all repository instances
type Repositories struct {
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
