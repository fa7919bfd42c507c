package workflows

import (
	"context"
	"fmt"
	"log"

	"github.com/aitorzubi/obratrace/internal/core/ports"
	"github.com/aitorzubi/obratrace/internal/pkg/metrics"
)

// EscalationActivities holds the activity implementations for the review
// escalation workflow.
type EscalationActivities struct {
	Sites    ports.SiteRepository
	Notifier ports.NotificationService
}

// GetEntryStatus returns the current review status of a ledger entry.
func (a *EscalationActivities) GetEntryStatus(ctx context.Context, siteID, entryID string) (string, error) {
	site, err := a.Sites.GetByID(ctx, siteID)
	if err != nil {
		return "", fmt.Errorf("get site %s: %w", siteID, err)
	}
	for _, e := range site.DailyProgress {
		if e.ID == entryID {
			return string(e.Status), nil
		}
	}
	return "", fmt.Errorf("entry %s not found on site %s", entryID, siteID)
}

// NotifyReviewer sends a push reminder about an overdue review.
func (a *EscalationActivities) NotifyReviewer(ctx context.Context, siteID, entryID string, meters float64) error {
	site, err := a.Sites.GetByID(ctx, siteID)
	if err != nil {
		return fmt.Errorf("get site %s: %w", siteID, err)
	}

	title := "Progress claim awaiting review"
	body := fmt.Sprintf("%.1f m claimed on %q is still pending review. Entry %s.", meters, site.Name, entryID)

	if a.Notifier == nil {
		log.Printf("PUSH (no notifier) → site=%s entry=%s: %s", siteID, entryID, body)
		return nil
	}
	return a.Notifier.SendPush(ctx, siteID, title, body)
}

// RecordEscalation bumps the escalation counter for dashboards.
func (a *EscalationActivities) RecordEscalation(ctx context.Context, siteID, entryID string) error {
	metrics.ReviewEscalations.Inc()
	log.Printf("Escalated review for site=%s entry=%s", siteID, entryID)
	return nil
}
