package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aitorzubi/obratrace/internal/core/domain"
)

// ProgressEvent is the wire envelope for ledger events: the entry alone
// does not identify the site it belongs to.
type ProgressEvent struct {
	SiteID string                `json:"site_id"`
	Entry  *domain.ProgressEntry `json:"entry"`
}

// errNotConnected reports a publish on a publisher that never connected.
var errNotConnected = errors.New("nats: publisher not connected")

// Publisher implements ports.EventPublisher using NATS JetStream.
// Methods tolerate a nil receiver: a deployment without NATS drops
// events instead of panicking.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "SITE_SNAPSHOTS",
			Subjects:  []string{"sites.snapshot.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "SITE_PROGRESS",
			Subjects:  []string{"sites.progress.>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishSiteSnapshot(ctx context.Context, site *domain.Site) error {
	if p == nil || p.js == nil {
		return errNotConnected
	}
	data, err := json.Marshal(site)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("sites.snapshot."+site.ID, data)
	return err
}

func (p *Publisher) PublishProgressEntry(ctx context.Context, siteID string, entry *domain.ProgressEntry) error {
	if p == nil || p.js == nil {
		return errNotConnected
	}
	data, err := json.Marshal(ProgressEvent{SiteID: siteID, Entry: entry})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("sites.progress.entry."+siteID, data)
	return err
}

func (p *Publisher) PublishProgressReview(ctx context.Context, siteID string, entry *domain.ProgressEntry) error {
	if p == nil || p.js == nil {
		return errNotConnected
	}
	data, err := json.Marshal(ProgressEvent{SiteID: siteID, Entry: entry})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("sites.progress.review."+siteID, data)
	return err
}

func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	if p == nil || p.conn == nil {
		return errNotConnected
	}
	return p.conn.Publish("sites.updates.broadcast", data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
