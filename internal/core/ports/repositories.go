package ports

import (
	"context"

	"github.com/aitorzubi/obratrace/internal/core/domain"
)

// SiteRepository persists site snapshots. Save always writes the whole
// aggregate (site row plus ledger) in one transaction; concurrent editors
// resolve as last write wins, which is the storage layer's concern, not the
// core's.
type SiteRepository interface {
	Save(ctx context.Context, site *domain.Site) error
	GetByID(ctx context.Context, id string) (*domain.Site, error)
	List(ctx context.Context) ([]domain.Site, error)
	// ListNear returns sites whose first traced vertex falls inside a
	// bounding box around the given point.
	ListNear(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.Site, error)
	Delete(ctx context.Context, id string) error
}
