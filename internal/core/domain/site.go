package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Site is the aggregate persisted for one traced construction site. It owns
// its vertex list and progress ledger exclusively; nothing else references
// them. A Site value is an immutable snapshot — all editing happens through
// a SiteSession and leaves the core only via Snapshot.
type Site struct {
	ID                         string          `json:"id"`
	Name                       string          `json:"name"`
	CreatedAt                  time.Time       `json:"createdAt"`
	Points                     []GeoPoint      `json:"points"`
	IsClosed                   bool            `json:"isClosed"`
	Metrics                    SiteMetrics     `json:"metrics"`
	ContractorCommitmentPerDay float64         `json:"contractorCommitmentPerDay"`
	DailyProgress              []ProgressEntry `json:"dailyProgress"`
	CustomTileURL              string          `json:"customTileUrl,omitempty"`
}

// NewSite creates an empty site: no vertices, no progress, open path.
func NewSite(name string) *Site {
	return &Site{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// SiteSession is the single in-memory editing session for one site. It
// composes the capture machine and the progress ledger; one session is
// owned by exactly one editor at a time, so no locking happens here.
// Discarding a session without calling Snapshot cancels the edit.
type SiteSession struct {
	id             string
	name           string
	createdAt      time.Time
	machine        *CaptureMachine
	ledger         *ProgressLedger
	commitmentRate float64
	customTileURL  string
}

// NewSiteSession starts a session over a brand-new empty site.
func NewSiteSession(name string) *SiteSession {
	return FromPersisted(NewSite(name))
}

// FromPersisted reconstructs a session from a stored site. The machine
// phase is derived from the stored vertices (a drawn site resumes
// finished); ledger entries and commitment rate are copied verbatim.
func FromPersisted(site *Site) *SiteSession {
	return &SiteSession{
		id:             site.ID,
		name:           site.Name,
		createdAt:      site.CreatedAt,
		machine:        NewCaptureMachine(site.Points, site.IsClosed),
		ledger:         NewProgressLedger(site.DailyProgress),
		commitmentRate: site.ContractorCommitmentPerDay,
		customTileURL:  site.CustomTileURL,
	}
}

// ID returns the site id this session edits.
func (s *SiteSession) ID() string { return s.id }

// Name returns the site name.
func (s *SiteSession) Name() string { return s.name }

// Machine exposes the capture machine for drawing operations and legality
// predicates.
func (s *SiteSession) Machine() *CaptureMachine { return s.machine }

// Metrics returns the metrics of the current draft shape.
func (s *SiteSession) Metrics() SiteMetrics { return s.machine.Metrics() }

// AddProgress appends a pending progress claim to the ledger.
func (s *SiteSession) AddProgress(metersCompleted float64, notes string) (*ProgressEntry, error) {
	return s.ledger.AddEntry(metersCompleted, notes)
}

// ReviewProgress approves or rejects a pending ledger entry.
func (s *SiteSession) ReviewProgress(entryID string, status EntryStatus) error {
	return s.ledger.Review(entryID, status)
}

// Progress returns the ledger entries in insertion order.
func (s *SiteSession) Progress() []ProgressEntry { return s.ledger.Entries() }

// SetCommitmentRate sets the contractor's committed meters per day. Zero
// disables the ETA estimate.
func (s *SiteSession) SetCommitmentRate(metersPerDay float64) error {
	if metersPerDay < 0 {
		return fmt.Errorf("%w: commitment rate must not be negative, got %v", ErrInvalidInput, metersPerDay)
	}
	s.commitmentRate = metersPerDay
	return nil
}

// CommitmentRate returns the committed meters per day.
func (s *SiteSession) CommitmentRate() float64 { return s.commitmentRate }

// SetCustomTileURL overrides the map tile source for this site.
func (s *SiteSession) SetCustomTileURL(url string) { s.customTileURL = url }

// Summary derives the completion figures for the current draft shape.
func (s *SiteSession) Summary() ProgressSummary {
	return s.ledger.Summary(s.machine.Metrics().PerimeterMeters, s.commitmentRate)
}

// Snapshot materializes the session into a persistable Site. Metrics are
// taken from the machine, which recomputes them on every mutation, so a
// snapshot can never carry stale figures. This is the only way data leaves
// the core toward storage.
func (s *SiteSession) Snapshot() *Site {
	return &Site{
		ID:                         s.id,
		Name:                       s.name,
		CreatedAt:                  s.createdAt,
		Points:                     s.machine.Points(),
		IsClosed:                   s.machine.Closed(),
		Metrics:                    s.machine.Metrics(),
		ContractorCommitmentPerDay: s.commitmentRate,
		DailyProgress:              s.ledger.Entries(),
		CustomTileURL:              s.customTileURL,
	}
}
