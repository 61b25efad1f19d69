package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sunstone-app/sunstone/internal/events"
	"github.com/sunstone-app/sunstone/internal/types"
)

// CompleteOptions tunes an ordinary completion.
type CompleteOptions struct {
	// Method names the surface that triggered completion ("cli", "api").
	Method string

	// MicroBonus is added to the base reward when the mission qualifies as
	// micro (category micro, or duration in (0,5]).
	MicroBonus int

	// ExtraProof is merged into the proof blob at completion time.
	ExtraProof types.Proof
}

// CompleteOutcome reports what CompleteAssignment did.
type CompleteOutcome struct {
	Record *AssignmentRecord

	// AlreadyCompleted is true when the assignment was completed before
	// this call; the existing record is returned unchanged and no reward
	// was granted.
	AlreadyCompleted bool

	Awarded int
}

// MicroOptions tunes the strict micro completion path.
type MicroOptions struct {
	Method string

	// DailyCap bounds the cumulative micro reward per user per day.
	// Zero disables the cap.
	DailyCap int

	// MaxPerParent bounds completed micros per parent title per day.
	// Zero disables the check.
	MaxPerParent int
}

// MicroOutcome reports what CompleteMicro did. A non-empty Refusal means
// nothing was mutated.
type MicroOutcome struct {
	Record           *AssignmentRecord
	AlreadyCompleted bool
	Awarded          int
	Clamped          bool
	Refusal          string
}

// RecoveryOutcome reports what CompleteRecovery did.
type RecoveryOutcome struct {
	Record           *AssignmentRecord
	AlreadyCompleted bool
	Awarded          int
	StreakCount      int
	ShieldsRemaining int
}

// CompleteAssignment transitions an assignment to completed, granting the
// reward exactly once. Idempotent on already-completed assignments. The
// whole operation is one transaction: a failure after the status mutation
// rolls everything back, so there is never a completed assignment without
// its ledger entry.
func (s *Store) CompleteAssignment(ctx context.Context, userID, assignmentID string, opts CompleteOptions) (*CompleteOutcome, error) {
	outcome := &CompleteOutcome{}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rec, err := loadAssignmentTx(ctx, tx, userID, assignmentID)
		if err != nil {
			return err
		}
		outcome.Record = rec

		if rec.Assignment.Status == types.AssignmentCompleted {
			outcome.AlreadyCompleted = true
			return nil
		}
		if !rec.Assignment.Status.CanTransitionTo(types.AssignmentCompleted) {
			return fmt.Errorf("assignment %s is %s and cannot be completed", assignmentID, rec.Assignment.Status)
		}

		now := time.Now()
		base := rec.Mission.Reward
		bonus := 0
		if rec.Mission.IsMicro() {
			bonus = opts.MicroBonus
		}
		total := base + bonus

		proof := rec.Assignment.Proof
		if proof == nil {
			proof = types.Proof{}
		}
		proof["completed_via"] = opts.Method
		proof["completed_at"] = now.Format(time.RFC3339)
		proof["base_reward"] = base
		proof["bonus_reward"] = bonus
		proof["total_reward"] = total
		for k, v := range opts.ExtraProof {
			proof[k] = v
		}

		if err := markCompletedTx(ctx, tx, rec, now, proof, false); err != nil {
			return err
		}

		if total > 0 {
			if err := insertRewardTx(ctx, tx, uuid.New().String(), userID, rec.Mission.Category, total, assignmentID, rec.Assignment.Date, now); err != nil {
				return err
			}
		}
		outcome.Awarded = total

		eventType := events.EventMissionCompleted
		if rec.Mission.Category == types.CategoryMicro {
			eventType = events.EventMicroCompleted
		}
		event, err := events.NewCompletion(eventType, userID, rec.Assignment.Date, assignmentID,
			fmt.Sprintf("completed %q (+%d)", rec.Mission.Title, total),
			events.CompletionData{
				MissionID:   rec.Mission.ID,
				BaseReward:  base,
				BonusReward: bonus,
				TotalReward: total,
				Micro:       rec.Mission.IsMicro(),
				Method:      opts.Method,
			})
		if err != nil {
			return err
		}
		return insertAuditTx(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// CompleteMicro is the strict sibling for category=micro assignments: it
// enforces the per-parent duplicate limit and clamps the award to the
// remaining daily micro headroom, all inside one transaction. A clamped
// award of zero still records a valid completion.
func (s *Store) CompleteMicro(ctx context.Context, userID, assignmentID string, opts MicroOptions) (*MicroOutcome, error) {
	outcome := &MicroOutcome{}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rec, err := loadAssignmentTx(ctx, tx, userID, assignmentID)
		if err != nil {
			return err
		}
		outcome.Record = rec

		if rec.Mission.Category != types.CategoryMicro {
			outcome.Refusal = fmt.Sprintf("assignment %s is not a micro mission", assignmentID)
			return nil
		}
		if rec.Assignment.Status == types.AssignmentCompleted {
			outcome.AlreadyCompleted = true
			return nil
		}
		if !rec.Assignment.Status.CanTransitionTo(types.AssignmentCompleted) {
			outcome.Refusal = fmt.Sprintf("assignment %s is %s and cannot be completed", assignmentID, rec.Assignment.Status)
			return nil
		}

		if opts.MaxPerParent > 0 && rec.Mission.Meta.ParentTitle != "" {
			var siblings int
			err := tx.QueryRowContext(ctx, `
				SELECT COUNT(*) FROM assignments a
				JOIN missions m ON m.id = a.mission_id
				WHERE a.user_id = ? AND a.date = ? AND a.status = ?
				  AND m.category = ?
				  AND json_extract(m.meta, '$.parent_title') = ?`,
				userID, rec.Assignment.Date, string(types.AssignmentCompleted),
				string(types.CategoryMicro), rec.Mission.Meta.ParentTitle).Scan(&siblings)
			if err != nil {
				return fmt.Errorf("failed to count completed micro siblings: %w", err)
			}
			if siblings >= opts.MaxPerParent {
				outcome.Refusal = fmt.Sprintf("a micro for %q was already completed today", rec.Mission.Meta.ParentTitle)
				return nil
			}
		}

		award := rec.Mission.Reward
		if opts.DailyCap > 0 {
			var granted int
			err := tx.QueryRowContext(ctx, `
				SELECT COALESCE(SUM(amount), 0) FROM rewards
				WHERE user_id = ? AND date = ? AND category = ?`,
				userID, rec.Assignment.Date, string(types.CategoryMicro)).Scan(&granted)
			if err != nil {
				return fmt.Errorf("failed to sum micro rewards: %w", err)
			}
			headroom := opts.DailyCap - granted
			if headroom < 0 {
				headroom = 0
			}
			if award > headroom {
				award = headroom
				outcome.Clamped = true
			}
		}

		now := time.Now()
		proof := rec.Assignment.Proof
		if proof == nil {
			proof = types.Proof{}
		}
		proof["completed_via"] = opts.Method
		proof["completed_at"] = now.Format(time.RFC3339)
		proof["base_reward"] = rec.Mission.Reward
		proof["total_reward"] = award
		proof["clamped"] = outcome.Clamped

		if err := markCompletedTx(ctx, tx, rec, now, proof, false); err != nil {
			return err
		}

		if award > 0 {
			if err := insertRewardTx(ctx, tx, uuid.New().String(), userID, types.CategoryMicro, award, assignmentID, rec.Assignment.Date, now); err != nil {
				return err
			}
		}
		outcome.Awarded = award

		event, err := events.NewCompletion(events.EventMicroCompleted, userID, rec.Assignment.Date, assignmentID,
			fmt.Sprintf("micro %q completed (+%d)", rec.Mission.Title, award),
			events.CompletionData{
				MissionID:   rec.Mission.ID,
				BaseReward:  rec.Mission.Reward,
				TotalReward: award,
				Micro:       true,
				Method:      opts.Method,
			})
		if err != nil {
			return err
		}
		return insertAuditTx(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// CompleteRecovery completes a recovery assignment: the streak counter is
// restored, one shield is consumed (floored at zero), and the assignment is
// flagged as shield-consuming. One transaction.
func (s *Store) CompleteRecovery(ctx context.Context, userID, assignmentID string) (*RecoveryOutcome, error) {
	outcome := &RecoveryOutcome{}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rec, err := loadAssignmentTx(ctx, tx, userID, assignmentID)
		if err != nil {
			return err
		}
		outcome.Record = rec

		if rec.Mission.Category != types.CategoryRecovery {
			return fmt.Errorf("assignment %s is not a recovery mission", assignmentID)
		}
		if rec.Assignment.Status == types.AssignmentCompleted {
			outcome.AlreadyCompleted = true
			return nil
		}
		if !rec.Assignment.Status.CanTransitionTo(types.AssignmentCompleted) {
			return fmt.Errorf("assignment %s is %s and cannot be completed", assignmentID, rec.Assignment.Status)
		}

		now := time.Now()
		proof := rec.Assignment.Proof
		if proof == nil {
			proof = types.Proof{}
		}
		proof["completed_via"] = "recovery"
		proof["completed_at"] = now.Format(time.RFC3339)
		proof["total_reward"] = rec.Mission.Reward

		if err := markCompletedTx(ctx, tx, rec, now, proof, true); err != nil {
			return err
		}

		if err := ensureProfileTx(ctx, tx, userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE profiles
			SET streak_count = streak_count + 1,
			    shields_remaining = MAX(0, shields_remaining - 1)
			WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to update streak state: %w", err)
		}
		row := tx.QueryRowContext(ctx, `
			SELECT streak_count, shields_remaining FROM profiles WHERE user_id = ?`, userID)
		if err := row.Scan(&outcome.StreakCount, &outcome.ShieldsRemaining); err != nil {
			return fmt.Errorf("failed to read streak state: %w", err)
		}

		if rec.Mission.Reward > 0 {
			if err := insertRewardTx(ctx, tx, uuid.New().String(), userID, types.CategoryRecovery, rec.Mission.Reward, assignmentID, rec.Assignment.Date, now); err != nil {
				return err
			}
		}
		outcome.Awarded = rec.Mission.Reward

		event, err := events.NewCompletion(events.EventRecoveryCompleted, userID, rec.Assignment.Date, assignmentID,
			fmt.Sprintf("streak recovered (streak=%d, shields=%d)", outcome.StreakCount, outcome.ShieldsRemaining),
			events.CompletionData{
				MissionID:   rec.Mission.ID,
				BaseReward:  rec.Mission.Reward,
				TotalReward: rec.Mission.Reward,
				Method:      "recovery",
			})
		if err != nil {
			return err
		}
		return insertAuditTx(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// loadAssignmentTx fetches an assignment with its mission inside an open
// transaction, scoped to the owning user.
func loadAssignmentTx(ctx context.Context, tx *sql.Tx, userID, assignmentID string) (*AssignmentRecord, error) {
	row := tx.QueryRowContext(ctx, `
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

// markCompletedTx flips an assignment to completed and writes back the
// proof blob, updating the in-memory record to match.
func markCompletedTx(ctx context.Context, tx *sql.Tx, rec *AssignmentRecord, now time.Time, proof types.Proof, usedShield bool) error {
	raw, err := marshalJSON(proof)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE assignments
		SET status = ?, completed_at = ?, proof = ?, used_streak_shield = ?
		WHERE id = ?`,
		string(types.AssignmentCompleted), now, raw, usedShield, rec.Assignment.ID)
	if err != nil {
		return fmt.Errorf("failed to mark assignment completed: %w", err)
	}
	rec.Assignment.Status = types.AssignmentCompleted
	rec.Assignment.CompletedAt = &now
	rec.Assignment.Proof = proof
	rec.Assignment.UsedStreakShield = usedShield
	return nil
}
