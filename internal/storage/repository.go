package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/records"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements records.ExpenseWriter
func (r *SQLiteRepository) Append(ctx context.Context, e core.ExpenseRecord) (string, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (description, name, amount, category, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Description, e.Name, string(e.Amount), e.Category, e.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	return strconv.FormatInt(id, 10), nil
}

// ListExpenses implements records.ExpenseLister
func (r *SQLiteRepository) ListExpenses(ctx context.Context, limit int) ([]core.ExpenseRecord, error) {
	query := `SELECT id, description, name, amount, category, created_at
		  FROM expenses ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
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
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.ExpenseRecord) error {
	id, err := strconv.ParseInt(e.ID, 10, 64)
	if err != nil {
		return records.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET description = ?, name = ?, amount = ?, category = ?, created_at = ?
		 WHERE id = ?`,
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
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return records.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, numID)
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
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, takenAt time.Time, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dashboard_snapshots (taken_at, payload) VALUES (?, ?)`,
		takenAt.UTC().Format(time.RFC3339), string(payload))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot implements records.SnapshotStore
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context) (time.Time, []byte, error) {
	var (
		takenAt string
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

	t, err := time.Parse(time.RFC3339, takenAt)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("parse snapshot time: %w", err)
	}

	return t, []byte(payload), nil
}
