package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/records"
)

// Store keeps expenses and snapshots in process memory. Useful for tests
// and for running without a database.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	items    []core.ExpenseRecord
	snapAt   time.Time
	snapJSON []byte
}

func New() *Store {
	return &Store{nextID: 1}
}

// Append stores the expense and returns a synthetic id.
func (s *Store) Append(_ context.Context, e core.ExpenseRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = strconv.FormatInt(s.nextID, 10)
	s.nextID++
	s.items = append(s.items, e)
	return e.ID, nil
}

// ListExpenses returns stored expenses ordered newest first by created_at.
func (s *Store) ListExpenses(_ context.Context, limit int) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]core.ExpenseRecord(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == e.ID {
			s.items[i] = e
			return nil
		}
	}
	return records.ErrNotFound
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return records.ErrNotFound
}

func (s *Store) SaveSnapshot(_ context.Context, takenAt time.Time, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapAt = takenAt
	s.snapJSON = append([]byte(nil), payload...)
	return nil
}

func (s *Store) LatestSnapshot(_ context.Context) (time.Time, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapJSON == nil {
		return time.Time{}, nil, records.ErrNoSnapshot
	}
	return s.snapAt, append([]byte(nil), s.snapJSON...), nil
}
