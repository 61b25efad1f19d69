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

// PartyOutcome reports what ApplyParty did.
type PartyOutcome struct {
	Run             *types.PlanRun
	CreatedMissions int
}

// ApplyParty materializes a roster suggestion set as an assigned party run.
// Party missions supplement the full-day plan and never supersede it; no
// micro companions are created for them.
func (s *Store) ApplyParty(ctx context.Context, userID, date, source string, doc *types.PartyDocument) (*PartyOutcome, error) {
	if doc == nil {
		return nil, fmt.Errorf("party document is required")
	}

	now := time.Now()
	run := &types.PlanRun{
		ID:        uuid.New().String(),
		UserID:    userID,
		Date:      date,
		Source:    source,
		Kind:      types.KindParty,
		Status:    types.PlanRunAssigned,
		Meta:      types.RunMeta{Party: doc},
		CreatedAt: now,
		UpdatedAt: now,
	}
	outcome := &PartyOutcome{Run: run}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var maxVersion sql.NullInt64
		err := tx.QueryRowContext(ctx, `
			SELECT MAX(version) FROM plan_runs
			WHERE user_id = ? AND date = ? AND kind = ?`,
			userID, date, string(types.KindParty)).Scan(&maxVersion)
		if err != nil {
			return fmt.Errorf("failed to query max party version: %w", err)
		}
		run.Version = 1
		if maxVersion.Valid {
			run.Version = int(maxVersion.Int64) + 1
		}

		for _, sug := range doc.Suggestions {
			draft := sug.Mission
			draft.Micro = nil
			member := sug.Member
			created, _, err := createFromDraftTx(ctx, tx, run, draft, types.MissionMeta{
				Why:           sug.Reason,
				PartyMember:   &member,
				FromPlanRunID: run.ID,
			}, now)
			if err != nil {
				return err
			}
			outcome.CreatedMissions += created
		}

		run.Meta.CreatedMissions = outcome.CreatedMissions
		meta, err := marshalJSON(run.Meta)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO plan_runs (id, user_id, date, version, source, kind, status, meta, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.UserID, run.Date, run.Version, run.Source,
			string(run.Kind), string(run.Status), meta, run.CreatedAt, run.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert party run: %w", err)
		}

		event := events.NewPartyAssigned(userID, date, run.ID,
			fmt.Sprintf("%d party mission(s) assigned", outcome.CreatedMissions))
		return insertAuditTx(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}
