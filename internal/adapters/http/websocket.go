package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/aitorzubi/obratrace/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	SiteID  string `json:"siteId"`  // site id filter (optional, "" = all)
	Channel string `json:"channel"` // "snapshots" | "progress" | "updates" (default: snapshots)
}

// subjectFor builds the NATS subject for a channel/site filter.
func subjectFor(channel, siteID string) string {
	filter := siteID
	if filter == "" {
		filter = ">"
	}
	switch channel {
	case "progress":
		if filter == ">" {
			return "sites.progress.>"
		}
		// entry and review subjects put the site id in the last token
		return "sites.progress.*." + filter
	case "updates":
		return "sites.updates.broadcast" // never site-scoped
	default:
		return "sites.snapshot." + filter
	}
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// site events from NATS to connected map clients. Clients send JSON:
// {"action":"subscribe","siteId":"<uuid>","channel":"snapshots"}.
// An empty siteId means all sites. Default channel is "snapshots".
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "addr", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// Auto-subscribe to all site snapshots plus the broadcast feed
		// (deletions only arrive there).
		for _, subject := range []string{"sites.snapshot.>", "sites.updates.broadcast"} {
			sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
				_ = writeJSON(json.RawMessage(msg.Data))
			})
			if err != nil {
				slog.Error("ws default subscribe", "subject", subject, "error", err)
				return
			}
			subs[subject] = sub
		}

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read client messages for subscribe/unsubscribe
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject := subjectFor(m.Channel, m.SiteID)

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					continue
				}
				s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed"})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"subscribed": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"unsubscribed": subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action"})
			}
		}

		// Cleanup
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "addr", remoteAddr)
	}
}
