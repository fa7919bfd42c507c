package main

import (
	"context"
	"log"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/aitorzubi/obratrace/internal/adapters/nats"
	"github.com/aitorzubi/obratrace/internal/adapters/postgres"
	"github.com/aitorzubi/obratrace/internal/core/domain"
	"github.com/aitorzubi/obratrace/internal/pkg/config"
	"github.com/aitorzubi/obratrace/internal/workflows"
)

func main() {
	cfg, err := config.Load("obratrace-escalator")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database for reading entry status inside activities
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	siteRepo := postgres.NewSiteRepo(db)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, "review-escalation-queue", worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ReviewEscalationWorkflow)
	w.RegisterActivity(&workflows.EscalationActivities{
		Sites: siteRepo,
		// Notifier is nil until a push provider is wired; activities log instead.
	})

	// Every new progress claim starts an escalation clock
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	deadline := time.Duration(cfg.Temporal.ReviewDeadlineHours) * time.Hour
	err = sub.SubscribeProgressEntries(ctx, func(ctx context.Context, siteID string, entry *domain.ProgressEntry) error {
		if entry == nil || entry.Status != domain.StatusPending {
			return nil
		}
		_, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        "escalate-" + entry.ID,
			TaskQueue: "review-escalation-queue",
		}, workflows.ReviewEscalationWorkflow, workflows.EscalationInput{
			SiteID:         siteID,
			EntryID:        entry.ID,
			MetersClaimed:  entry.MetersCompleted,
			ReviewDeadline: deadline,
		})
		return err
	})
	if err != nil {
		log.Fatalf("subscribe progress entries: %v", err)
	}

	log.Println("escalator worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
