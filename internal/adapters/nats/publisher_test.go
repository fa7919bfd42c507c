package natsadapter_test

import (
	"context"
	"testing"

	natsadapter "github.com/aitorzubi/obratrace/internal/adapters/nats"
	"github.com/aitorzubi/obratrace/internal/core/domain"
	"github.com/aitorzubi/obratrace/internal/core/ports"
)

// A boot where NATS is down hands services a *Publisher that never
// connected. Publishing must fail cleanly instead of panicking.
func TestPublisher_NilReceiverDegrades(t *testing.T) {
	var p *natsadapter.Publisher
	ctx := context.Background()
	site := &domain.Site{ID: "site-1", Name: "Lot 7 fence"}
	entry := &domain.ProgressEntry{ID: "entry-1", MetersCompleted: 25}

	if err := p.PublishSiteSnapshot(ctx, site); err == nil {
		t.Error("PublishSiteSnapshot on disconnected publisher: expected error, got nil")
	}
	if err := p.PublishProgressEntry(ctx, site.ID, entry); err == nil {
		t.Error("PublishProgressEntry on disconnected publisher: expected error, got nil")
	}
	if err := p.PublishProgressReview(ctx, site.ID, entry); err == nil {
		t.Error("PublishProgressReview on disconnected publisher: expected error, got nil")
	}
	if err := p.PublishBroadcast(ctx, []byte(`{}`)); err == nil {
		t.Error("PublishBroadcast on disconnected publisher: expected error, got nil")
	}
	p.Close() // must not panic
}

// Same trap through the port: a typed-nil publisher inside the interface
// passes callers' nil guards.
func TestPublisher_TypedNilInterface(t *testing.T) {
	var pub ports.EventPublisher = (*natsadapter.Publisher)(nil)
	if pub == nil {
		t.Fatal("typed nil compared equal to nil interface")
	}
	if err := pub.PublishBroadcast(context.Background(), []byte(`{}`)); err == nil {
		t.Error("publish through typed-nil interface: expected error, got nil")
	}
}
