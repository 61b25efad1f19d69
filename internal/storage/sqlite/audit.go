package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sunstone-app/sunstone/internal/events"
)

// insertAuditTx appends an audit event inside an open transaction so the
// event commits or rolls back with the mutation it describes.
func insertAuditTx(ctx context.Context, tx *sql.Tx, event *events.AuditEvent) error {
	data := string(event.Data)
	if data == "" {
		data = "{}"
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_events (id, type, timestamp, user_id, date, plan_run_id, assignment_id, message, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, string(event.Type), event.Timestamp, event.UserID, event.Date,
		event.PlanRunID, event.AssignmentID, event.Message, data)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// StoreAuditEvent records a standalone audit event outside any mutation.
func (s *Store) StoreAuditEvent(ctx context.Context, event *events.AuditEvent) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertAuditTx(ctx, tx, event)
	})
}

// GetAuditEvents returns a user's audit trail, newest first, capped at
// limit (0 means no cap).
func (s *Store) GetAuditEvents(ctx context.Context, userID string, limit int) ([]*events.AuditEvent, error) {
	query := `
		SELECT id, type, timestamp, user_id, date, plan_run_id, assignment_id, message, data
		FROM audit_events
		WHERE user_id = ?
		ORDER BY timestamp DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var out []*events.AuditEvent
	for rows.Next() {
		var e events.AuditEvent
		var eventType, data string
		if err := rows.Scan(&e.ID, &eventType, &e.Timestamp, &e.UserID, &e.Date,
			&e.PlanRunID, &e.AssignmentID, &e.Message, &data); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Type = events.EventType(eventType)
		e.Data = []byte(data)
		out = append(out, &e)
	}
	return out, rows.Err()
}
