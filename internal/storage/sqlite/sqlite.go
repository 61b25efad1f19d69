// Package sqlite implements the storage interface on SQLite. Every
// multi-record operation runs in one BeginTx transaction with the status
// re-read inside it, so racing callers resolve through the idempotency
// checks instead of double-committing.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sunstone-app/sunstone/internal/types"
)

// ErrNotFound is returned when a referenced record is absent or not owned
// by the requesting user.
var ErrNotFound = errors.New("record not found")

// Store implements the storage contract using SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and initializes the schema.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// WAL mode for better concurrency between the CLI and any long reads.
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// marshalJSON serializes v for a TEXT column, treating nil as "{}".
func marshalJSON(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal json column: %w", err)
	}
	return string(raw), nil
}

// unmarshalJSON deserializes a TEXT column, treating empty as absent.
func unmarshalJSON(raw string, v any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to unmarshal json column: %w", err)
	}
	return nil
}

// inTx runs fn inside a transaction, committing on nil and rolling back on
// error. Rollback after commit is a no-op, so the deferred call is safe.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertMissionTx creates a mission row inside an open transaction.
func insertMissionTx(ctx context.Context, tx *sql.Tx, m *types.Mission) error {
	meta, err := marshalJSON(m.Meta)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO missions (id, title, category, difficulty, duration_minutes, reward, meta, system_generated, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, string(m.Category), string(m.Difficulty), m.DurationMinutes,
		m.Reward, meta, m.SystemGenerated, m.Date, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert mission %q: %w", m.Title, err)
	}
	return nil
}

// insertAssignmentTx creates an assignment row inside an open transaction.
func insertAssignmentTx(ctx context.Context, tx *sql.Tx, a *types.Assignment) error {
	proof, err := marshalJSON(a.Proof)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO assignments (id, user_id, mission_id, date, status, completed_at, proof, used_streak_shield, plan_run_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.MissionID, a.Date, string(a.Status), a.CompletedAt,
		proof, a.UsedStreakShield, a.PlanRunID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert assignment for mission %s: %w", a.MissionID, err)
	}
	return nil
}

// insertRewardTx appends a reward ledger row inside an open transaction.
func insertRewardTx(ctx context.Context, tx *sql.Tx, id, userID string, category types.Category, amount int, assignmentID, date string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO rewards (id, user_id, category, amount, assignment_id, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, string(category), amount, assignmentID, date, at)
	if err != nil {
		return fmt.Errorf("failed to insert reward ledger row: %w", err)
	}
	return nil
}
