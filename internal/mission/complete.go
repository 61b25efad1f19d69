package mission

import (
	"context"
	"fmt"

	"github.com/sunstone-app/sunstone/internal/events"
	"github.com/sunstone-app/sunstone/internal/planning"
	"github.com/sunstone-app/sunstone/internal/storage/sqlite"
	"github.com/sunstone-app/sunstone/internal/types"
)

// Complete transitions an assignment to completed, granting base reward
// plus the micro bonus when the mission qualifies. Idempotent.
func (e *Engine) Complete(ctx context.Context, userID, assignmentID, method string) (*sqlite.CompleteOutcome, error) {
	if method == "" {
		method = "engine"
	}
	return e.store.CompleteAssignment(ctx, userID, assignmentID, sqlite.CompleteOptions{
		Method:     method,
		MicroBonus: MicroBonusReward,
	})
}

// MicroResult is the structured result of the strict micro path. It never
// raises for policy refusals: interactive surfaces render Errors directly.
type MicroResult struct {
	OK               bool
	Errors           []string
	Awarded          int
	Clamped          bool
	AlreadyCompleted bool
	Record           *sqlite.AssignmentRecord
}

// CompleteMicro is the strict completion path for category=micro
// assignments. Before any mutation it applies the wind-down gate: once the
// cutoff window has closed, a micro may only be completed if its parent
// category is wind-down safe. Storage then enforces the per-parent limit
// and the per-day reward cap inside the completion transaction.
func (e *Engine) CompleteMicro(ctx context.Context, userID, assignmentID string) (*MicroResult, error) {
	rec, err := e.store.GetAssignment(ctx, userID, assignmentID)
	if err != nil {
		return nil, err
	}
	if rec.Mission.Category != types.CategoryMicro {
		return &MicroResult{Errors: []string{
			fmt.Sprintf("%q is not a micro mission", rec.Mission.Title),
		}}, nil
	}

	profile, err := e.store.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	tc := e.policy.ComputeForProfile(profile)

	if tc.WindDownActive() {
		parent := rec.Mission.Meta.ParentCategory
		if parent != "" && !parent.IsWindDownSafe() {
			return &MicroResult{Errors: []string{
				fmt.Sprintf("wind-down is active: micro for a %s mission cannot be completed now (allowed: reflection, sleep)", parent),
			}}, nil
		}
		if rec.Mission.DurationMinutes > planning.WindDownMaxMinutes {
			return &MicroResult{Errors: []string{
				fmt.Sprintf("wind-down is active: only missions of %d minutes or less can be completed now", planning.WindDownMaxMinutes),
			}}, nil
		}
	}

	outcome, err := e.store.CompleteMicro(ctx, userID, assignmentID, sqlite.MicroOptions{
		Method:       "micro",
		DailyCap:     MicroDailyRewardCap,
		MaxPerParent: MicroMaxPerParent,
	})
	if err != nil {
		return nil, err
	}
	if outcome.Refusal != "" {
		return &MicroResult{Errors: []string{outcome.Refusal}, Record: outcome.Record}, nil
	}
	return &MicroResult{
		OK:               true,
		Awarded:          outcome.Awarded,
		Clamped:          outcome.Clamped,
		AlreadyCompleted: outcome.AlreadyCompleted,
		Record:           outcome.Record,
	}, nil
}

// CompleteRecovery completes a recovery assignment, restoring the streak
// and consuming a shield.
func (e *Engine) CompleteRecovery(ctx context.Context, userID, assignmentID string) (*sqlite.RecoveryOutcome, error) {
	return e.store.CompleteRecovery(ctx, userID, assignmentID)
}

// Assignments returns the day's assignments with their missions.
func (e *Engine) Assignments(ctx context.Context, userID, date string) ([]*sqlite.AssignmentRecord, error) {
	return e.store.ListAssignments(ctx, userID, date)
}

// RewardSummary totals the reward ledger per category.
func (e *Engine) RewardSummary(ctx context.Context, userID string) (map[types.Category]int, error) {
	return e.store.RewardSummary(ctx, userID)
}

// AuditTrail returns the user's audit events, newest first.
func (e *Engine) AuditTrail(ctx context.Context, userID string, limit int) ([]*events.AuditEvent, error) {
	return e.store.GetAuditEvents(ctx, userID, limit)
}
