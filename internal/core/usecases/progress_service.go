package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/aitorzubi/obratrace/internal/core/domain"
	"github.com/aitorzubi/obratrace/internal/core/ports"
)

const siteCacheTTL = 10 * time.Minute

// ProgressService handles the progress ledger: dated completion claims and
// their one-shot review workflow. Every mutation goes through a site
// session and lands back in storage as a whole snapshot.
type ProgressService struct {
	sites     ports.SiteRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewProgressService creates a new ProgressService.
func NewProgressService(sites ports.SiteRepository, cache ports.CacheService, publisher ports.EventPublisher) *ProgressService {
	return &ProgressService{sites: sites, cache: cache, publisher: publisher}
}

// AddEntry appends a pending progress claim to a site's ledger.
func (s *ProgressService) AddEntry(ctx context.Context, siteID string, metersCompleted float64, notes string) (*domain.ProgressEntry, error) {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	session := domain.FromPersisted(site)
	entry, err := session.AddProgress(metersCompleted, notes)
	if err != nil {
		return nil, err
	}

	if err := s.sites.Save(ctx, session.Snapshot()); err != nil {
		return nil, fmt.Errorf("save site: %w", err)
	}

	s.invalidate(ctx, siteID)
	if s.publisher != nil {
		_ = s.publisher.PublishProgressEntry(ctx, siteID, entry)
	}

	return entry, nil
}

// Review approves or rejects a pending entry. The one-review-only rule is
// enforced by the ledger itself, so no caller can sneak past it.
func (s *ProgressService) Review(ctx context.Context, siteID, entryID string, status domain.EntryStatus) (*domain.ProgressEntry, error) {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	session := domain.FromPersisted(site)
	if err := session.ReviewProgress(entryID, status); err != nil {
		return nil, err
	}

	snap := session.Snapshot()
	if err := s.sites.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save site: %w", err)
	}

	s.invalidate(ctx, siteID)

	var reviewed *domain.ProgressEntry
	for i := range snap.DailyProgress {
		if snap.DailyProgress[i].ID == entryID {
			reviewed = &snap.DailyProgress[i]
			break
		}
	}

	if s.publisher != nil && reviewed != nil {
		_ = s.publisher.PublishProgressReview(ctx, siteID, reviewed)
	}

	return reviewed, nil
}

// ListPending returns the pending entries of a site, oldest first.
func (s *ProgressService) ListPending(ctx context.Context, siteID string) ([]domain.ProgressEntry, error) {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}

	var pending []domain.ProgressEntry
	for _, e := range site.DailyProgress {
		if e.Status == domain.StatusPending {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

func (s *ProgressService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, SiteCacheKey(id))
}
