package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/records"
)

// SnapshotWorker recomputes the dashboard summary when expenses change and
// persists it as a JSON snapshot. Snapshots let the API serve a recent
// dashboard without recomputing on every request.
type SnapshotWorker struct {
	lister    records.ExpenseLister
	snapshots records.SnapshotStore
	logger    *log.Logger
	now       func() time.Time
}

func NewSnapshotWorker(lister records.ExpenseLister, snapshots records.SnapshotStore, logger *log.Logger) *SnapshotWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	}
	return &SnapshotWorker{
		lister:    lister,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (w *SnapshotWorker) WithClock(now func() time.Time) *SnapshotWorker {
	w.now = now
	return w
}

// HandleChangeMessage processes a single expense change event from AMQP.
func (w *SnapshotWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ExpenseChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing expense change event",
		log.FieldExpenseID, msg.ID,
		"action", msg.Action)

	return w.TakeSnapshot(ctx)
}

// TakeSnapshot recomputes the dashboard from all stored expenses and saves it.
func (w *SnapshotWorker) TakeSnapshot(ctx context.Context) error {
	expenses, err := w.lister.ListExpenses(ctx, 0)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}

	ref := w.now().UTC()
	summary, report := core.ComposeDetailed(expenses, ref)
	if len(report.Skipped) > 0 {
		w.logger.WarnContext(ctx, "Skipped malformed records while composing snapshot",
			log.FieldSkipped, len(report.Skipped))
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	if err := w.snapshots.SaveSnapshot(ctx, ref, payload); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	w.logger.InfoContext(ctx, "Dashboard snapshot saved",
		"expenses", len(expenses),
		"total", summary.Total)

	return nil
}

// RunPeriodic takes a snapshot at every interval until the context is done.
// It takes one snapshot immediately on startup so a fresh deploy has data.
func (w *SnapshotWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if err := w.TakeSnapshot(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup snapshot failed", log.FieldError, err.Error())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.TakeSnapshot(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic snapshot failed", log.FieldError, err.Error())
			}
		}
	}
}
