package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sunstone-app/sunstone/internal/types"
)

// AssignmentRecord pairs an assignment with the mission it binds. The
// mission is shared-read; completion mutates only the assignment fields.
type AssignmentRecord struct {
	Assignment types.Assignment
	Mission    types.Mission
}

const assignmentColumns = `
	a.id, a.user_id, a.mission_id, a.date, a.status, a.completed_at, a.proof,
	a.used_streak_shield, a.plan_run_id, a.created_at,
	m.id, m.title, m.category, m.difficulty, m.duration_minutes, m.reward,
	m.meta, m.system_generated, m.date, m.created_at`

// GetAssignment fetches one assignment with its mission, scoped to the
// owning user. Returns ErrNotFound for absent or foreign assignments.
func (s *Store) GetAssignment(ctx context.Context, userID, assignmentID string) (*AssignmentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments a
		JOIN missions m ON m.id = a.mission_id
		WHERE a.id = ? AND a.user_id = ?`, assignmentID, userID)
	rec, err := scanAssignmentRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, ErrNotFound)
	}
	return rec, err
}

// ListAssignments returns all assignments for a user and date with their
// missions, oldest first.
func (s *Store) ListAssignments(ctx context.Context, userID, date string) ([]*AssignmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments a
		JOIN missions m ON m.id = a.mission_id
		WHERE a.user_id = ? AND a.date = ?
		ORDER BY a.created_at ASC`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var recs []*AssignmentRecord
	for rows.Next() {
		rec, err := scanAssignmentRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ListPendingMissions returns the swap-eligible view of a user's pending
// assignments: micro missions are never swap candidates and are excluded.
func (s *Store) ListPendingMissions(ctx context.Context, userID, date string) ([]types.PendingMission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, m.title, m.category, m.duration_minutes, m.reward
		FROM assignments a
		JOIN missions m ON m.id = a.mission_id
		WHERE a.user_id = ? AND a.date = ? AND a.status = ? AND m.category != ?
		ORDER BY a.created_at ASC`,
		userID, date, string(types.AssignmentPending), string(types.CategoryMicro))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending missions: %w", err)
	}
	defer rows.Close()

	var pending []types.PendingMission
	for rows.Next() {
		var p types.PendingMission
		var category string
		if err := rows.Scan(&p.AssignmentID, &p.Title, &category, &p.DurationMinutes, &p.Reward); err != nil {
			return nil, fmt.Errorf("failed to scan pending mission: %w", err)
		}
		p.Category = types.Category(category)
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// CountCompleted counts completed assignments for a user and date.
func (s *Store) CountCompleted(ctx context.Context, userID, date string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM assignments
		WHERE user_id = ? AND date = ? AND status = ?`,
		userID, date, string(types.AssignmentCompleted)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed assignments: %w", err)
	}
	return count, nil
}

func scanAssignmentRecord(row scanner) (*AssignmentRecord, error) {
	var rec AssignmentRecord
	var aStatus string
	var proof sql.NullString
	var completedAt sql.NullTime
	var mCategory, mDifficulty, mMeta string

	err := row.Scan(
		&rec.Assignment.ID, &rec.Assignment.UserID, &rec.Assignment.MissionID,
		&rec.Assignment.Date, &aStatus, &completedAt, &proof,
		&rec.Assignment.UsedStreakShield, &rec.Assignment.PlanRunID, &rec.Assignment.CreatedAt,
		&rec.Mission.ID, &rec.Mission.Title, &mCategory, &mDifficulty,
		&rec.Mission.DurationMinutes, &rec.Mission.Reward, &mMeta,
		&rec.Mission.SystemGenerated, &rec.Mission.Date, &rec.Mission.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.Assignment.Status = types.AssignmentStatus(aStatus)
	if completedAt.Valid {
		t := completedAt.Time
		rec.Assignment.CompletedAt = &t
	}
	if proof.Valid {
		if err := unmarshalJSON(proof.String, &rec.Assignment.Proof); err != nil {
			return nil, err
		}
	}
	rec.Mission.Category = types.Category(mCategory)
	rec.Mission.Difficulty = types.Difficulty(mDifficulty)
	if err := unmarshalJSON(mMeta, &rec.Mission.Meta); err != nil {
		return nil, err
	}
	return &rec, nil
}
