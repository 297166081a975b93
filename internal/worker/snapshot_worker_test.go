package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/memory"
)

func TestTakeSnapshotPersistsSummary(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	store.Append(ctx, core.ExpenseRecord{
		Description: "groceries",
		Name:        "Groceries",
		Amount:      core.Amount("42.50"),
		Category:    string(core.CategoryFood),
		CreatedAt:   "2025-06-18T09:00:00+00:00",
	})

	ref := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	w := NewSnapshotWorker(store, store, nil).WithClock(func() time.Time { return ref })

	if err := w.TakeSnapshot(ctx); err != nil {
		t.Fatalf("TakeSnapshot: %v", err)
	}

	takenAt, payload, err := store.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if !takenAt.Equal(ref) {
		t.Fatalf("taken_at = %v, want %v", takenAt, ref)
	}

	var summary core.DashboardSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if summary.Total != 42.5 {
		t.Fatalf("snapshot total = %v, want 42.5", summary.Total)
	}
	if len(summary.RecentExpenses) != 1 {
		t.Fatalf("snapshot recent expenses = %d, want 1", len(summary.RecentExpenses))
	}
}

func TestHandleChangeMessageTakesSnapshot(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	ref := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	w := NewSnapshotWorker(store, store, nil).WithClock(func() time.Time { return ref })

	msg := amqp.NewExpenseChangedMessage("1", amqp.ActionCreated)
	if err := w.HandleChangeMessage(ctx, msg); err != nil {
		t.Fatalf("HandleChangeMessage: %v", err)
	}

	_, payload, err := store.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot after change event: %v", err)
	}

	var summary core.DashboardSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if summary.Total != 0 {
		t.Fatalf("empty store snapshot total = %v, want 0", summary.Total)
	}
}

func TestTakeSnapshotToleratesMalformedRecords(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	store.Append(ctx, core.ExpenseRecord{
		Description: "bad",
		Name:        "Bad",
		Amount:      core.Amount("abc"),
		Category:    string(core.CategoryShopping),
		CreatedAt:   "2025-06-18T09:00:00+00:00",
	})
	store.Append(ctx, core.ExpenseRecord{
		Description: "good",
		Name:        "Good",
		Amount:      core.Amount("10"),
		Category:    string(core.CategoryShopping),
		CreatedAt:   "2025-06-18T10:00:00+00:00",
	})

	ref := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	w := NewSnapshotWorker(store, store, nil).WithClock(func() time.Time { return ref })

	if err := w.TakeSnapshot(ctx); err != nil {
		t.Fatalf("TakeSnapshot: %v", err)
	}

	_, payload, err := store.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}

	var summary core.DashboardSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if summary.Total != 10 {
		t.Fatalf("snapshot total = %v, want 10", summary.Total)
	}
}
