// Package mission orchestrates the plan lifecycle: proposal, validation,
// preview, assignment, swaps, completion, and streak recovery. The engine
// owns policy; the storage backend owns atomicity.
package mission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sunstone-app/sunstone/internal/events"
	"github.com/sunstone-app/sunstone/internal/planning"
	"github.com/sunstone-app/sunstone/internal/storage"
	"github.com/sunstone-app/sunstone/internal/timectx"
	"github.com/sunstone-app/sunstone/internal/types"
)

const (
	// DefaultMinutesCap is the daily time budget when none is configured.
	DefaultMinutesCap = 60

	// MicroBonusReward is added on top of the base reward when a completed
	// mission qualifies as micro.
	MicroBonusReward = 2

	// MicroDailyRewardCap bounds the cumulative micro reward per day. The
	// strict micro path clamps awards to the remaining headroom.
	MicroDailyRewardCap = 15

	// MicroMaxPerParent bounds completed micros per parent mission per day.
	MicroMaxPerParent = 1

	// RecoveryReward and RecoveryDurationMinutes are fixed for every
	// injected recovery mission.
	RecoveryReward          = 25
	RecoveryDurationMinutes = 10

	// ShieldsPerWeek is the shield count restored at each ISO-week rollover.
	ShieldsPerWeek = 2
)

// Engine wires the proposal collaborator, the validators, the time policy,
// and the storage backend into the plan lifecycle operations.
type Engine struct {
	store    storage.Storage
	proposer types.Proposer
	policy   *timectx.Policy
	rules    planning.Rules

	minutesCap int
}

// Config holds engine configuration.
type Config struct {
	// Store is the storage backend. Required.
	Store storage.Storage

	// Proposer drafts candidate documents. Optional: a nil proposer means
	// every proposal degrades to "nothing generated".
	Proposer types.Proposer

	// Policy computes time context snapshots (defaults if nil).
	Policy *timectx.Policy

	// Rules overrides the validation thresholds (defaults if zero).
	Rules *planning.Rules

	// MinutesCap is the default daily time budget (DefaultMinutesCap if 0).
	MinutesCap int
}

// New creates a mission engine.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil || cfg.Store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	policy := cfg.Policy
	if policy == nil {
		policy = timectx.New()
	}
	rules := planning.DefaultRules()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}
	minsCap := cfg.MinutesCap
	if minsCap <= 0 {
		minsCap = DefaultMinutesCap
	}

	return &Engine{
		store:      cfg.Store,
		proposer:   cfg.Proposer,
		policy:     policy,
		rules:      rules,
		minutesCap: minsCap,
	}, nil
}

// TimeContext computes the current time-policy snapshot for a user.
func (e *Engine) TimeContext(ctx context.Context, userID string) (*types.TimeContext, error) {
	profile, err := e.store.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.policy.ComputeForProfile(profile), nil
}

// PlanResult reports a plan generation attempt. Exactly one of three shapes
// comes back: a previewed run (Run set), a validation failure (Errors set),
// or an unavailable proposal (Reason set).
type PlanResult struct {
	Run    *types.PlanRun
	Errors []string
	Reason string
}

// Valid reports whether a previewed run was produced.
func (r *PlanResult) Valid() bool { return r.Run != nil }

// PlanRequest carries the caller-tunable inputs to plan generation.
type PlanRequest struct {
	UserID     string
	Date       string
	MinutesCap int // engine default if 0
	Intent     string
	Signals    map[string]any
	Source     string
}

// GeneratePlan runs propose -> validate -> preview for a full-day plan.
// A valid candidate is persisted as a previewed run; the caller assigns it
// separately (or via PlanAndAssign). Collaborator failure and validation
// failure are reported in the result, never as errors.
func (e *Engine) GeneratePlan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	profile, err := e.store.EnsureProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	tc := e.policy.ComputeForProfile(profile)

	minsCap := req.MinutesCap
	if minsCap <= 0 {
		minsCap = e.minutesCap
	}

	if e.proposer == nil {
		return &PlanResult{Reason: "no proposal collaborator configured"}, nil
	}

	proposal := e.proposer.ProposePlan(ctx, &types.PlannerContext{
		UserID:      req.UserID,
		Date:        req.Date,
		MinutesCap:  minsCap,
		TimeContext: tc,
		StreakCount: profile.StreakCount,
		Signals:     req.Signals,
		Intent:      req.Intent,
	})
	if !proposal.Available() {
		slog.Info("plan proposal unavailable", "user", req.UserID, "date", req.Date, "reason", proposal.Reason)
		return &PlanResult{Reason: proposal.Reason}, nil
	}

	if ok, errs := e.rules.ValidatePlan(proposal.Doc, minsCap, tc); !ok {
		slog.Info("plan candidate rejected", "user", req.UserID, "date", req.Date, "violations", len(errs))
		return &PlanResult{Errors: errs}, nil
	}

	run, err := e.PreviewPlan(ctx, req, proposal.Doc, tc, minsCap)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Run: run}, nil
}

// PreviewPlan persists an already-validated candidate as a previewed run.
func (e *Engine) PreviewPlan(ctx context.Context, req PlanRequest, doc *types.PlanDocument, tc *types.TimeContext, minutesCap int) (*types.PlanRun, error) {
	source := req.Source
	if source == "" {
		source = "engine"
	}
	run := &types.PlanRun{
		UserID: req.UserID,
		Date:   req.Date,
		Source: source,
		Kind:   types.KindFullPlan,
		Status: types.PlanRunPreviewed,
		Meta: types.RunMeta{
			Plan:        doc,
			TimeContext: tc,
			MinutesCap:  minutesCap,
		},
	}
	if err := e.store.CreatePlanRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to persist preview: %w", err)
	}

	event := events.NewPlanPreviewed(req.UserID, req.Date, run.ID,
		fmt.Sprintf("plan v%d previewed: %d missions", run.Version, len(doc.Missions)))
	if err := e.store.StoreAuditEvent(ctx, event); err != nil {
		return nil, err
	}
	return run, nil
}

// AssignPlan materializes a previewed run owned by the user. Idempotent on
// already-assigned runs.
func (e *Engine) AssignPlan(ctx context.Context, userID, planRunID string) (*AssignResult, error) {
	run, err := e.store.GetPlanRun(ctx, planRunID)
	if err != nil {
		return nil, err
	}
	if run == nil || run.UserID != userID {
		return nil, fmt.Errorf("plan run %s: %w", planRunID, storage.ErrNotFound)
	}

	outcome, err := e.store.AssignPlan(ctx, planRunID)
	if err != nil {
		return nil, err
	}
	return &AssignResult{
		Run:             outcome.Run,
		AlreadyAssigned: outcome.AlreadyAssigned,
		CreatedMissions: outcome.CreatedMissions,
		CreatedMicros:   outcome.CreatedMicros,
		ArchivedPending: outcome.ArchivedPending,
		SupersededRunID: outcome.SupersededRunID,
	}, nil
}

// AssignResult reports what an assignment did.
type AssignResult struct {
	Run             *types.PlanRun
	AlreadyAssigned bool
	CreatedMissions int
	CreatedMicros   int
	ArchivedPending int
	SupersededRunID string
}

// PlanAndAssign is the one-shot path: generate, validate, preview, assign.
func (e *Engine) PlanAndAssign(ctx context.Context, req PlanRequest) (*PlanResult, *AssignResult, error) {
	plan, err := e.GeneratePlan(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if !plan.Valid() {
		return plan, nil, nil
	}
	assign, err := e.AssignPlan(ctx, req.UserID, plan.Run.ID)
	if err != nil {
		return plan, nil, err
	}
	return plan, assign, nil
}

// Today formats the engine clock's current date.
func (e *Engine) Today() string {
	now := time.Now()
	if e.policy != nil && e.policy.Now != nil {
		now = e.policy.Now()
	}
	return now.Format("2006-01-02")
}
