package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aitorzubi/obratrace/internal/core/domain"
)

func TestLedgerAddEntry(t *testing.T) {
	l := domain.NewProgressLedger(nil)

	entry, err := l.AddEntry(42.5, "north fence line")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID == "" {
		t.Error("entry has no id")
	}
	if entry.Status != domain.StatusPending {
		t.Errorf("new entry status = %s, want %s", entry.Status, domain.StatusPending)
	}
	if entry.MetersCompleted != 42.5 || entry.Notes != "north fence line" {
		t.Errorf("entry fields not preserved: %+v", entry)
	}
	if time.Since(entry.Date) > time.Minute {
		t.Errorf("entry date not current: %v", entry.Date)
	}
	if len(l.Entries()) != 1 {
		t.Fatalf("ledger has %d entries, want 1", len(l.Entries()))
	}
}

func TestLedgerAddEntryRejectsNonPositiveMeters(t *testing.T) {
	l := domain.NewProgressLedger(nil)

	for _, meters := range []float64{0, -5} {
		if _, err := l.AddEntry(meters, ""); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("AddEntry(%v) error = %v, want ErrInvalidInput", meters, err)
		}
	}
	if len(l.Entries()) != 0 {
		t.Error("rejected entries were appended")
	}
}

func TestLedgerReviewOnce(t *testing.T) {
	l := domain.NewProgressLedger(nil)
	entry, _ := l.AddEntry(100, "")

	if err := l.Review(entry.ID, domain.StatusApproved); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	if got := l.Entries()[0].Status; got != domain.StatusApproved {
		t.Errorf("status after approval = %s", got)
	}

	// Entries are reviewed exactly once, regardless of the new verdict.
	if err := l.Review(entry.ID, domain.StatusRejected); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Errorf("second review error = %v, want ErrIllegalTransition", err)
	}
	if err := l.Review(entry.ID, domain.StatusApproved); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Errorf("repeated approval error = %v, want ErrIllegalTransition", err)
	}
}

func TestLedgerReviewUnknownEntry(t *testing.T) {
	l := domain.NewProgressLedger(nil)
	if err := l.Review("missing-id", domain.StatusApproved); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestLedgerReviewRejectsBogusStatus(t *testing.T) {
	l := domain.NewProgressLedger(nil)
	entry, _ := l.AddEntry(10, "")
	if err := l.Review(entry.ID, domain.StatusPending); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("review back to pending: error = %v, want ErrInvalidInput", err)
	}
}

func TestLedgerSummary(t *testing.T) {
	l := domain.NewProgressLedger(nil)
	approved, _ := l.AddEntry(100, "")
	_ = l.Review(approved.ID, domain.StatusApproved)

	// Pending and rejected entries never count toward completion.
	_, _ = l.AddEntry(50, "awaiting review")
	rejected, _ := l.AddEntry(75, "")
	_ = l.Review(rejected.ID, domain.StatusRejected)

	s := l.Summary(400, 50)
	if s.TotalCompletedMeters != 100 {
		t.Errorf("TotalCompletedMeters = %v, want 100", s.TotalCompletedMeters)
	}
	if s.CompletionPercentage != 25 {
		t.Errorf("CompletionPercentage = %d, want 25", s.CompletionPercentage)
	}
	if s.EstimatedDaysRemaining == nil || *s.EstimatedDaysRemaining != 6 {
		t.Errorf("EstimatedDaysRemaining = %v, want 6", s.EstimatedDaysRemaining)
	}
}

func TestLedgerSummaryEdgeCases(t *testing.T) {
	l := domain.NewProgressLedger(nil)
	entry, _ := l.AddEntry(500, "")
	_ = l.Review(entry.ID, domain.StatusApproved)

	// Zero perimeter: completion is 0, not a division blow-up.
	if s := l.Summary(0, 50); s.CompletionPercentage != 0 {
		t.Errorf("zero-perimeter completion = %d, want 0", s.CompletionPercentage)
	}

	// Completion is clamped at 100 and the ETA never goes negative.
	s := l.Summary(400, 50)
	if s.CompletionPercentage != 100 {
		t.Errorf("over-complete percentage = %d, want 100", s.CompletionPercentage)
	}
	if s.EstimatedDaysRemaining == nil || *s.EstimatedDaysRemaining != 0 {
		t.Errorf("over-complete days remaining = %v, want 0", s.EstimatedDaysRemaining)
	}

	// No commitment rate means no ETA at all.
	if s := l.Summary(400, 0); s.EstimatedDaysRemaining != nil {
		t.Errorf("days remaining without rate = %v, want nil", s.EstimatedDaysRemaining)
	}
}
