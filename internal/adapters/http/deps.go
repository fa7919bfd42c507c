package http

import (
	"github.com/nats-io/nats.go"

	"github.com/aitorzubi/obratrace/internal/adapters/postgres"
	"github.com/aitorzubi/obratrace/internal/adapters/valkey"
	"github.com/aitorzubi/obratrace/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sites    *usecases.SiteService
	Progress *usecases.ProgressService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache

	// SnapThresholdPx is the default pixel tolerance used by the snap
	// endpoint when the client does not send one.
	SnapThresholdPx float64
}
