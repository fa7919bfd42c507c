package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// EscalationInput is the input for the review escalation workflow.
type EscalationInput struct {
	SiteID         string
	EntryID        string
	MetersClaimed  float64
	ReviewDeadline time.Duration
}

// ReviewEscalationWorkflow waits out the review deadline for a progress
// claim. If the entry is still pending when the deadline passes, the site
// reviewer gets a push reminder. Entries that were approved or rejected in
// the meantime end the workflow quietly.
func ReviewEscalationWorkflow(ctx workflow.Context, input EscalationInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting review escalation workflow",
		"siteId", input.SiteID, "entryId", input.EntryID)

	if err := workflow.Sleep(ctx, input.ReviewDeadline); err != nil {
		return err
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Check whether the entry was reviewed during the wait
	var status string
	err := workflow.ExecuteActivity(ctx, "GetEntryStatus", input.SiteID, input.EntryID).Get(ctx, &status)
	if err != nil {
		return err
	}
	if status != "pending" {
		logger.Info("Entry reviewed before deadline, no escalation", "status", status)
		return nil
	}

	// Step 2: Remind the reviewer
	err = workflow.ExecuteActivity(ctx, "NotifyReviewer", input.SiteID, input.EntryID, input.MetersClaimed).Get(ctx, nil)
	if err != nil {
		return err
	}

	// Step 3: Record the escalation
	_ = workflow.ExecuteActivity(ctx, "RecordEscalation", input.SiteID, input.EntryID).Get(ctx, nil)

	logger.Info("Review escalation sent", "siteId", input.SiteID, "entryId", input.EntryID)
	return nil
}
