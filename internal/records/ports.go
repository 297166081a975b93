package records

import (
	"context"
	"errors"
	"time"

	"spendlog/internal/core"
)

// ErrNotFound is returned when an expense id does not exist in the store.
var ErrNotFound = errors.New("expense not found")

// Ports for outbound adapters.
type (
	ExpenseWriter interface {
		Append(ctx context.Context, e core.ExpenseRecord) (id string, err error)
	}

	// ExpenseLister returns stored expenses, newest first.
	ExpenseLister interface {
		ListExpenses(ctx context.Context, limit int) ([]core.ExpenseRecord, error)
	}

	ExpenseUpdater interface {
		UpdateExpense(ctx context.Context, e core.ExpenseRecord) error
	}

	ExpenseDeleter interface {
		DeleteExpense(ctx context.Context, id string) error
	}

	// SnapshotStore persists precomputed dashboard summaries as JSON payloads.
	SnapshotStore interface {
		SaveSnapshot(ctx context.Context, takenAt time.Time, payload []byte) error
		LatestSnapshot(ctx context.Context) (takenAt time.Time, payload []byte, err error)
	}
)

// Store is the full persistence surface a backend must provide.
type Store interface {
	ExpenseWriter
	ExpenseLister
	ExpenseUpdater
	ExpenseDeleter
	SnapshotStore
}

// ErrNoSnapshot is returned by LatestSnapshot when none has been saved yet.
var ErrNoSnapshot = errors.New("no dashboard snapshot available")
