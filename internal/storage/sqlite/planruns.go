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

// AssignOutcome reports what AssignPlan did.
type AssignOutcome struct {
	Run *types.PlanRun

	// AlreadyAssigned is true when the run was assigned before this call;
	// nothing was changed.
	AlreadyAssigned bool

	CreatedMissions int
	CreatedMicros   int
	ArchivedPending int
	SupersededRunID string
}

// CreatePlanRun persists a run, computing the next version number scoped to
// (user, date, kind) inside the transaction. Versions are monotonic and
// append-only; the UNIQUE constraint backstops races.
func (s *Store) CreatePlanRun(ctx context.Context, run *types.PlanRun) error {
	now := time.Now()
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	run.CreatedAt = now
	run.UpdatedAt = now

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var maxVersion sql.NullInt64
		err := tx.QueryRowContext(ctx, `
			SELECT MAX(version) FROM plan_runs
			WHERE user_id = ? AND date = ? AND kind = ?`,
			run.UserID, run.Date, string(run.Kind)).Scan(&maxVersion)
		if err != nil {
			return fmt.Errorf("failed to query max plan version: %w", err)
		}
		run.Version = 1
		if maxVersion.Valid {
			run.Version = int(maxVersion.Int64) + 1
		}

		meta, err := marshalJSON(run.Meta)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO plan_runs (id, user_id, date, version, source, kind, status, meta, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.UserID, run.Date, run.Version, run.Source,
			string(run.Kind), string(run.Status), meta, run.CreatedAt, run.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert plan run: %w", err)
		}
		return nil
	})
}

// GetPlanRun fetches a run by ID. Returns (nil, nil) when absent.
func (s *Store) GetPlanRun(ctx context.Context, id string) (*types.PlanRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, version, source, kind, status, meta, created_at, updated_at
		FROM plan_runs WHERE id = ?`, id)
	run, err := scanPlanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// GetAssignedRun fetches the run currently holding status=assigned for
// (user, date, kind). Returns (nil, nil) when none exists.
func (s *Store) GetAssignedRun(ctx context.Context, userID, date string, kind types.PlanRunKind) (*types.PlanRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, version, source, kind, status, meta, created_at, updated_at
		FROM plan_runs
		WHERE user_id = ? AND date = ? AND kind = ? AND status = ?
		ORDER BY version DESC LIMIT 1`,
		userID, date, string(kind), string(types.PlanRunAssigned))
	run, err := scanPlanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// ListPlanRuns returns all runs for a user and date, newest first.
func (s *Store) ListPlanRuns(ctx context.Context, userID, date string) ([]*types.PlanRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, version, source, kind, status, meta, created_at, updated_at
		FROM plan_runs
		WHERE user_id = ? AND date = ?
		ORDER BY created_at DESC`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan runs: %w", err)
	}
	defer rows.Close()

	var runs []*types.PlanRun
	for rows.Next() {
		run, err := scanPlanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// AssignPlan materializes a previewed run. See the storage interface for
// the full contract; everything below happens in one transaction and the
// run status is re-read inside it, so the loser of a racing assign observes
// AlreadyAssigned (or a superseded run) instead of half-applied state.
func (s *Store) AssignPlan(ctx context.Context, planRunID string) (*AssignOutcome, error) {
	outcome := &AssignOutcome{}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT id, user_id, date, version, source, kind, status, meta, created_at, updated_at
			FROM plan_runs WHERE id = ?`, planRunID)
		run, err := scanPlanRun(row)
		if err == sql.ErrNoRows {
			return fmt.Errorf("plan run %s: %w", planRunID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		outcome.Run = run

		// Idempotency: assigning twice is a safe no-op.
		if run.Status == types.PlanRunAssigned {
			outcome.AlreadyAssigned = true
			return nil
		}
		if run.Status.IsTerminal() {
			return fmt.Errorf("plan run %s is %s and cannot be assigned", run.ID, run.Status)
		}

		now := time.Now()

		// Supersede any other assigned full-day run for this (user, date),
		// archiving only its still-pending assignments. Completed work is
		// never retroactively erased.
		if run.Kind == types.KindFullPlan {
			prev, err := assignedRunTx(ctx, tx, run.UserID, run.Date, types.KindFullPlan, run.ID)
			if err != nil {
				return err
			}
			if prev != nil {
				archived, err := archivePendingTx(ctx, tx, run.UserID, prev.ID, now, types.Proof{
					"archived_reason":      "superseded",
					"superseded_by_run_id": run.ID,
				})
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, `
					UPDATE plan_runs SET status = ?, updated_at = ? WHERE id = ?`,
					string(types.PlanRunSuperseded), now, prev.ID); err != nil {
					return fmt.Errorf("failed to supersede plan run %s: %w", prev.ID, err)
				}
				outcome.ArchivedPending = archived
				outcome.SupersededRunID = prev.ID
			}
		}

		// Materialize the candidate document. An empty document assigns
		// trivially: the run is marked assigned with zero created records.
		var drafts []types.MissionDraft
		if run.Meta.Plan != nil {
			drafts = run.Meta.Plan.Missions
		}
		for _, draft := range drafts {
			created, micros, err := createFromDraftTx(ctx, tx, run, draft, types.MissionMeta{
				Why:           draft.Why,
				FromPlanRunID: run.ID,
			}, now)
			if err != nil {
				return err
			}
			outcome.CreatedMissions += created
			outcome.CreatedMicros += micros
		}

		// Commit the counts into the run metadata for observability.
		run.Status = types.PlanRunAssigned
		run.Meta.CreatedMissions = outcome.CreatedMissions
		run.Meta.CreatedMicros = outcome.CreatedMicros
		run.Meta.ArchivedAssignments = outcome.ArchivedPending
		run.Meta.SupersededRunID = outcome.SupersededRunID
		run.UpdatedAt = now

		meta, err := marshalJSON(run.Meta)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE plan_runs SET status = ?, meta = ?, updated_at = ? WHERE id = ?`,
			string(types.PlanRunAssigned), meta, now, run.ID); err != nil {
			return fmt.Errorf("failed to mark plan run assigned: %w", err)
		}

		event, err := events.NewPlanAssigned(run.UserID, run.Date, run.ID,
			fmt.Sprintf("plan v%d assigned: %d missions, %d micros", run.Version, outcome.CreatedMissions, outcome.CreatedMicros),
			events.PlanAssignedData{
				Version:         run.Version,
				CreatedMissions: outcome.CreatedMissions,
				CreatedMicros:   outcome.CreatedMicros,
				SupersededRunID: outcome.SupersededRunID,
				ArchivedPending: outcome.ArchivedPending,
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

// createFromDraftTx creates the mission and assignment for one draft entry,
// plus the linked micro companion when present. Returns (missions, micros)
// created.
func createFromDraftTx(ctx context.Context, tx *sql.Tx, run *types.PlanRun, draft types.MissionDraft, meta types.MissionMeta, now time.Time) (int, int, error) {
	mission := &types.Mission{
		ID:              uuid.New().String(),
		Title:           draft.Title,
		Category:        draft.Category,
		Difficulty:      draft.Difficulty,
		DurationMinutes: draft.DurationMinutes,
		Reward:          draft.Reward,
		Meta:            meta,
		SystemGenerated: true,
		Date:            run.Date,
		CreatedAt:       now,
	}
	if err := insertMissionTx(ctx, tx, mission); err != nil {
		return 0, 0, err
	}
	if err := insertAssignmentTx(ctx, tx, &types.Assignment{
		ID:        uuid.New().String(),
		UserID:    run.UserID,
		MissionID: mission.ID,
		Date:      run.Date,
		Status:    types.AssignmentPending,
		PlanRunID: run.ID,
		CreatedAt: now,
	}); err != nil {
		return 0, 0, err
	}

	micros := 0
	if draft.Micro != nil {
		reward := draft.Micro.Reward
		if reward <= 0 {
			reward = microDefaultReward
		}
		micro := &types.Mission{
			ID:              uuid.New().String(),
			Title:           draft.Micro.Title,
			Category:        types.CategoryMicro,
			Difficulty:      types.DifficultyEasy,
			DurationMinutes: draft.Micro.DurationMinutes,
			Reward:          reward,
			Meta: types.MissionMeta{
				// Parent linkage read later by the micro completion gate.
				ParentTitle:    draft.Title,
				ParentCategory: draft.Category,
				FromPlanRunID:  run.ID,
			},
			SystemGenerated: true,
			Date:            run.Date,
			CreatedAt:       now,
		}
		if err := insertMissionTx(ctx, tx, micro); err != nil {
			return 0, 0, err
		}
		if err := insertAssignmentTx(ctx, tx, &types.Assignment{
			ID:        uuid.New().String(),
			UserID:    run.UserID,
			MissionID: micro.ID,
			Date:      run.Date,
			Status:    types.AssignmentPending,
			PlanRunID: run.ID,
			CreatedAt: now,
		}); err != nil {
			return 0, 0, err
		}
		micros = 1
	}
	return 1, micros, nil
}

// microDefaultReward is granted to micro companions whose draft omits one.
const microDefaultReward = 5

// assignedRunTx finds the assigned run for (user, date, kind) other than
// excludeID, inside an open transaction.
func assignedRunTx(ctx context.Context, tx *sql.Tx, userID, date string, kind types.PlanRunKind, excludeID string) (*types.PlanRun, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, user_id, date, version, source, kind, status, meta, created_at, updated_at
		FROM plan_runs
		WHERE user_id = ? AND date = ? AND kind = ? AND status = ? AND id != ?
		ORDER BY version DESC LIMIT 1`,
		userID, date, string(kind), string(types.PlanRunAssigned), excludeID)
	run, err := scanPlanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// archivePendingTx archives every still-pending assignment created by the
// given run, stamping the provided provenance as each proof blob. Pending
// assignments never carry a proof, so the overwrite loses nothing.
func archivePendingTx(ctx context.Context, tx *sql.Tx, userID, planRunID string, now time.Time, provenance types.Proof) (int, error) {
	proof, err := marshalJSON(provenance)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE assignments SET status = ?, proof = ?
		WHERE user_id = ? AND plan_run_id = ? AND status = ?`,
		string(types.AssignmentArchived), proof, userID, planRunID, string(types.AssignmentPending))
	if err != nil {
		return 0, fmt.Errorf("failed to archive pending assignments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count archived assignments: %w", err)
	}
	return int(n), nil
}

// scanner abstracts sql.Row and sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanPlanRun(row scanner) (*types.PlanRun, error) {
	var run types.PlanRun
	var kind, status, meta string
	err := row.Scan(&run.ID, &run.UserID, &run.Date, &run.Version, &run.Source,
		&kind, &status, &meta, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	run.Kind = types.PlanRunKind(kind)
	run.Status = types.PlanRunStatus(status)
	if err := unmarshalJSON(meta, &run.Meta); err != nil {
		return nil, err
	}
	return &run, nil
}
