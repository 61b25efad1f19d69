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

// SwapOutcome reports what ApplySwaps did.
type SwapOutcome struct {
	Run             *types.PlanRun
	ReplacedTitles  []string
	CreatedMissions int
	CreatedMicros   int
}

// ApplySwaps creates an assigned swap run and applies each replacement:
// the targeted pending assignment is archived with swap provenance stamped
// into its proof, and the replacement mission plus its micro companion are
// created. Swap runs coexist with the full-day plan; nothing else is
// superseded. One transaction.
func (s *Store) ApplySwaps(ctx context.Context, userID, date, source string, doc *types.SwapDocument) (*SwapOutcome, error) {
	if doc == nil {
		return nil, fmt.Errorf("swap document is required")
	}

	now := time.Now()
	run := &types.PlanRun{
		ID:     uuid.New().String(),
		UserID: userID,
		Date:   date,
		Source: source,
		Kind:   types.KindSwap,
		// Swaps are validated synchronously just before this call, so the
		// run is assigned immediately rather than staged through preview.
		Status:    types.PlanRunAssigned,
		Meta:      types.RunMeta{Swaps: doc},
		CreatedAt: now,
		UpdatedAt: now,
	}
	outcome := &SwapOutcome{Run: run}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var maxVersion sql.NullInt64
		err := tx.QueryRowContext(ctx, `
			SELECT MAX(version) FROM plan_runs
			WHERE user_id = ? AND date = ? AND kind = ?`,
			userID, date, string(types.KindSwap)).Scan(&maxVersion)
		if err != nil {
			return fmt.Errorf("failed to query max swap version: %w", err)
		}
		run.Version = 1
		if maxVersion.Valid {
			run.Version = int(maxVersion.Int64) + 1
		}

		for _, repl := range doc.Replacements {
			if err := applyReplacementTx(ctx, tx, run, repl, now, outcome); err != nil {
				return err
			}
		}

		run.Meta.CreatedMissions = outcome.CreatedMissions
		run.Meta.CreatedMicros = outcome.CreatedMicros
		meta, err := marshalJSON(run.Meta)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO plan_runs (id, user_id, date, version, source, kind, status, meta, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.UserID, run.Date, run.Version, run.Source,
			string(run.Kind), string(run.Status), meta, run.CreatedAt, run.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert swap run: %w", err)
		}

		event, err := events.NewSwapsApplied(userID, date, run.ID,
			fmt.Sprintf("%d swap(s) applied", len(outcome.ReplacedTitles)),
			events.SwapsAppliedData{
				SwapCount:      doc.SwapCount,
				ReplacedTitles: outcome.ReplacedTitles,
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

// applyReplacementTx retires the single pending assignment matching the
// target title and creates its replacement records.
func applyReplacementTx(ctx context.Context, tx *sql.Tx, run *types.PlanRun, repl types.SwapReplacement, now time.Time, outcome *SwapOutcome) error {
	var assignmentID string
	err := tx.QueryRowContext(ctx, `
		SELECT a.id FROM assignments a
		JOIN missions m ON m.id = a.mission_id
		WHERE a.user_id = ? AND a.date = ? AND a.status = ? AND m.title = ?
		LIMIT 1`,
		run.UserID, run.Date, string(types.AssignmentPending), repl.ReplaceTitle).Scan(&assignmentID)
	if err == sql.ErrNoRows {
		// Validation checked this against a caller-supplied snapshot; a
		// miss here means the assignment completed or archived in between.
		return fmt.Errorf("pending mission %q disappeared before swap: %w", repl.ReplaceTitle, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to locate swap target %q: %w", repl.ReplaceTitle, err)
	}

	proof, err := marshalJSON(types.Proof{
		"archived_reason": "swapped",
		"swap_run_id":     run.ID,
		"replaced_by":     repl.NewMission.Title,
	})
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE assignments SET status = ?, proof = ? WHERE id = ?`,
		string(types.AssignmentArchived), proof, assignmentID); err != nil {
		return fmt.Errorf("failed to archive swapped assignment: %w", err)
	}

	created, micros, err := createFromDraftTx(ctx, tx, run, repl.NewMission, types.MissionMeta{
		Why:           repl.NewMission.Why,
		ReplacedTitle: repl.ReplaceTitle,
		FromPlanRunID: run.ID,
	}, now)
	if err != nil {
		return err
	}
	outcome.CreatedMissions += created
	outcome.CreatedMicros += micros
	outcome.ReplacedTitles = append(outcome.ReplacedTitles, repl.ReplaceTitle)
	return nil
}
