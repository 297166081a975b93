package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/records"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS expenses (
    id BIGSERIAL PRIMARY KEY,
    description TEXT NOT NULL,
    name TEXT NOT NULL,
    amount TEXT NOT NULL,
    category TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_expenses_created_at ON expenses(created_at);
CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category);

CREATE TABLE IF NOT EXISTS dashboard_snapshots (
    id BIGSERIAL PRIMARY KEY,
    taken_at TIMESTAMPTZ NOT NULL,
    payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_dashboard_snapshots_taken_at ON dashboard_snapshots(taken_at);
`

type Repository struct {
	db *sql.DB
}

func NewRepository(connStr string) (*Repository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements records.ExpenseWriter
func (r *Repository) Append(ctx context.Context, e core.ExpenseRecord) (string, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO expenses (description, name, amount, category, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		e.Description, e.Name, string(e.Amount), e.Category, e.CreatedAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	return strconv.FormatInt(id, 10), nil
}

// ListExpenses implements records.ExpenseLister
func (r *Repository) ListExpenses(ctx context.Context, limit int) ([]core.ExpenseRecord, error) {
	query := `SELECT id, description, name, amount, category, created_at
		  FROM expenses ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		var (
			id     int64
			e      core.ExpenseRecord
			amount string
		)
		if err := rows.Scan(&id, &e.Description, &e.Name, &amount, &e.Category, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.ID = strconv.FormatInt(id, 10)
		e.Amount = core.Amount(amount)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return out, nil
}

// UpdateExpense implements records.ExpenseUpdater
func (r *Repository) UpdateExpense(ctx context.Context, e core.ExpenseRecord) error {
	id, err := strconv.ParseInt(e.ID, 10, 64)
	if err != nil {
		return records.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET description = $1, name = $2, amount = $3, category = $4, created_at = $5
		 WHERE id = $6`,
		e.Description, e.Name, string(e.Amount), e.Category, e.CreatedAt, id)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return records.ErrNotFound
	}

	return nil
}

// DeleteExpense implements records.ExpenseDeleter
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return records.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, numID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return records.ErrNotFound
	}

	return nil
}

// SaveSnapshot implements records.SnapshotStore
func (r *Repository) SaveSnapshot(ctx context.Context, takenAt time.Time, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dashboard_snapshots (taken_at, payload) VALUES ($1, $2)`,
		takenAt.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot implements records.SnapshotStore
func (r *Repository) LatestSnapshot(ctx context.Context) (time.Time, []byte, error) {
	var (
		takenAt time.Time
		payload string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT taken_at, payload FROM dashboard_snapshots ORDER BY id DESC LIMIT 1`).
		Scan(&takenAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil, records.ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("latest snapshot: %w", err)
	}

	return takenAt, []byte(payload), nil
}
