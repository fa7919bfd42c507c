package ports

import (
	"context"
	"time"

	"github.com/aitorzubi/obratrace/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSiteSnapshot(ctx context.Context, site *domain.Site) error
	PublishProgressEntry(ctx context.Context, siteID string, entry *domain.ProgressEntry) error
	PublishProgressReview(ctx context.Context, siteID string, entry *domain.ProgressEntry) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeProgressEntries(ctx context.Context, handler func(ctx context.Context, siteID string, entry *domain.ProgressEntry) error) error
	SubscribeSiteSnapshots(ctx context.Context, handler func(ctx context.Context, site *domain.Site) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NotificationService delivers reviewer-facing notifications (push, email, etc.).
type NotificationService interface {
	SendPush(ctx context.Context, userID, title, body string) error
}
