package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aitorzubi/obratrace/internal/core/domain"
	"github.com/aitorzubi/obratrace/internal/core/ports"
)

// SiteService handles site lifecycle: create, load, snapshot save, delete.
type SiteService struct {
	sites     ports.SiteRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewSiteService creates a new SiteService. Cache and publisher may be nil;
// both are best-effort collaborators.
func NewSiteService(sites ports.SiteRepository, cache ports.CacheService, publisher ports.EventPublisher) *SiteService {
	return &SiteService{sites: sites, cache: cache, publisher: publisher}
}

// Create persists a brand-new empty site and returns its snapshot.
func (s *SiteService) Create(ctx context.Context, name string) (*domain.Site, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: site name must not be empty", domain.ErrInvalidInput)
	}

	site := domain.NewSiteSession(name).Snapshot()
	if err := s.sites.Save(ctx, site); err != nil {
		return nil, fmt.Errorf("save site: %w", err)
	}
	return site, nil
}

// SiteCacheKey is the cache key under which a site snapshot is stored.
// Shared with the snapshot-eviction consumer.
func SiteCacheKey(id string) string {
	return "sites:id:" + id
}

// GetByID returns a single site snapshot.
func (s *SiteService) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	cacheKey := SiteCacheKey(id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var site domain.Site
			if err := json.Unmarshal(data, &site); err == nil {
				return &site, nil
			}
		}
	}

	site, err := s.sites.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(site); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, siteCacheTTL)
		}
	}

	return site, nil
}

// List returns all sites.
func (s *SiteService) List(ctx context.Context) ([]domain.Site, error) {
	return s.sites.List(ctx)
}

// ListNear returns sites traced near a point.
func (s *SiteService) ListNear(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.Site, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.sites.ListNear(ctx, lat, lng, radiusMeters, limit)
}

// SaveSnapshot stores a full site snapshot. The payload is passed through a
// session first, so stored metrics are always recomputed from the vertices —
// a client can never persist stale or hand-edited figures. Saving is
// last-write-wins across editors.
func (s *SiteService) SaveSnapshot(ctx context.Context, site *domain.Site) (*domain.Site, error) {
	if site.ID == "" {
		return nil, fmt.Errorf("%w: site id must not be empty", domain.ErrInvalidInput)
	}
	if site.Name == "" {
		return nil, fmt.Errorf("%w: site name must not be empty", domain.ErrInvalidInput)
	}

	snap := domain.FromPersisted(site).Snapshot()
	if err := s.sites.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save site: %w", err)
	}

	s.invalidate(ctx, snap.ID)
	if s.publisher != nil {
		_ = s.publisher.PublishSiteSnapshot(ctx, snap)
	}

	return snap, nil
}

// Summary derives the completion figures for a site. Recomputed on every
// call, never cached.
func (s *SiteService) Summary(ctx context.Context, id string) (*domain.ProgressSummary, error) {
	site, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sum := domain.FromPersisted(site).Summary()
	return &sum, nil
}

// Delete removes a site and its ledger. Deletions have no per-site event
// subject, so connected map clients learn about them via broadcast.
func (s *SiteService) Delete(ctx context.Context, id string) error {
	if err := s.sites.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	if s.publisher != nil {
		data, _ := json.Marshal(map[string]string{"event": "site_deleted", "id": id})
		_ = s.publisher.PublishBroadcast(ctx, data)
	}
	return nil
}

func (s *SiteService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, SiteCacheKey(id))
}
