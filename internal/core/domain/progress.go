package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// EntryStatus is the review state of a progress entry.
type EntryStatus string

const (
	StatusPending  EntryStatus = "pending"
	StatusApproved EntryStatus = "approved"
	StatusRejected EntryStatus = "rejected"
)

// ProgressEntry is a dated claim of meters completed against a traced
// shape. Entries are created pending and reviewed exactly once.
type ProgressEntry struct {
	ID              string      `json:"id"`
	Date            time.Time   `json:"date"`
	MetersCompleted float64     `json:"metersCompleted"`
	Status          EntryStatus `json:"status"`
	Notes           string      `json:"notes,omitempty"`
}

// ProgressSummary is derived on demand from the ledger and never cached.
type ProgressSummary struct {
	TotalCompletedMeters float64 `json:"totalCompletedMeters"`
	CompletionPercentage int     `json:"completionPercentage"`
	// EstimatedDaysRemaining is nil when no commitment rate is set.
	EstimatedDaysRemaining *int `json:"estimatedDaysRemaining,omitempty"`
}

// ProgressLedger is an append-only log of progress entries. Entries are
// never deleted or mutated here except for their status; removal is an
// administrative operation that lives outside the core.
type ProgressLedger struct {
	entries []ProgressEntry
}

// NewProgressLedger builds a ledger over existing entries, copied verbatim.
func NewProgressLedger(entries []ProgressEntry) *ProgressLedger {
	return &ProgressLedger{entries: append([]ProgressEntry(nil), entries...)}
}

// AddEntry appends a pending entry dated now and returns it.
func (l *ProgressLedger) AddEntry(metersCompleted float64, notes string) (*ProgressEntry, error) {
	if metersCompleted <= 0 {
		return nil, fmt.Errorf("%w: metersCompleted must be positive, got %v", ErrInvalidInput, metersCompleted)
	}

	entry := ProgressEntry{
		ID:              uuid.NewString(),
		Date:            time.Now().UTC(),
		MetersCompleted: metersCompleted,
		Status:          StatusPending,
		Notes:           notes,
	}
	l.entries = append(l.entries, entry)
	return &entry, nil
}

// Review approves or rejects a pending entry. Each entry is reviewed
// exactly once; a second review fails regardless of the target status.
func (l *ProgressLedger) Review(entryID string, status EntryStatus) error {
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("%w: review status must be approved or rejected, got %q", ErrInvalidInput, status)
	}

	for i := range l.entries {
		if l.entries[i].ID != entryID {
			continue
		}
		if l.entries[i].Status != StatusPending {
			return fmt.Errorf("%w: entry %s already %s", ErrIllegalTransition, entryID, l.entries[i].Status)
		}
		l.entries[i].Status = status
		return nil
	}
	return fmt.Errorf("%w: progress entry %s", ErrNotFound, entryID)
}

// Entries returns a copy of the ledger in insertion order.
func (l *ProgressLedger) Entries() []ProgressEntry {
	return append([]ProgressEntry(nil), l.entries...)
}

// Summary derives completion figures against a perimeter and a committed
// meters-per-day rate. Only approved entries count. Open paths and closed
// polygons share the same completion semantics.
func (l *ProgressLedger) Summary(perimeterMeters, commitmentRate float64) ProgressSummary {
	var total float64
	for _, e := range l.entries {
		if e.Status == StatusApproved {
			total += e.MetersCompleted
		}
	}

	s := ProgressSummary{TotalCompletedMeters: total}

	if perimeterMeters > 0 {
		pct := int(math.Round(100 * total / perimeterMeters))
		if pct > 100 {
			pct = 100
		}
		s.CompletionPercentage = pct
	}

	if commitmentRate > 0 {
		remaining := perimeterMeters - total
		if remaining < 0 {
			remaining = 0
		}
		days := int(math.Ceil(remaining / commitmentRate))
		s.EstimatedDaysRemaining = &days
	}

	return s
}
