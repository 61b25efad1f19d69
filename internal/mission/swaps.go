package mission

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sunstone-app/sunstone/internal/planning"
	"github.com/sunstone-app/sunstone/internal/types"
)

// NoPendingReason is the fixed zero-swap reason used when there is nothing
// left to swap. The collaborator is not called in that case.
const NoPendingReason = "no pending missions to swap"

// SwapResult reports a swap proposal attempt. Doc is always set on success,
// including the zero-swap case; Reason is set when the collaborator had
// nothing usable; Errors carries validation violations.
type SwapResult struct {
	Doc     *types.SwapDocument
	Ceiling int
	Errors  []string
	Reason  string
}

// Valid reports whether a usable (possibly zero-swap) document came back.
func (r *SwapResult) Valid() bool { return r.Doc != nil }

// SwapRequest carries the caller-tunable inputs to swap proposal.
type SwapRequest struct {
	UserID  string
	Date    string
	Intent  string
	Signals map[string]any
	Source  string
}

// ProposeSwaps computes the dynamic swap ceiling, gathers the pending
// snapshot, and asks the collaborator for a swap set. The returned count is
// clamped to the ceiling regardless of what the collaborator claimed, and
// the whole document is re-validated before it is declared usable.
func (e *Engine) ProposeSwaps(ctx context.Context, req SwapRequest) (*SwapResult, error) {
	profile, err := e.store.EnsureProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	tc := e.policy.ComputeForProfile(profile)

	ceiling := tc.SwapCeiling()
	if ceiling > planning.MaxSwaps {
		ceiling = planning.MaxSwaps
	}

	pending, err := e.store.ListPendingMissions(ctx, req.UserID, req.Date)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return &SwapResult{
			Doc:     &types.SwapDocument{Date: req.Date, NoSwapReason: NoPendingReason},
			Ceiling: ceiling,
		}, nil
	}

	if e.proposer == nil {
		return &SwapResult{Ceiling: ceiling, Reason: "no proposal collaborator configured"}, nil
	}

	proposal := e.proposer.ProposeSwaps(ctx, &types.SwapContext{
		UserID:      req.UserID,
		Date:        req.Date,
		MinutesCap:  e.minutesCap,
		TimeContext: tc,
		Pending:     pending,
		MaxSwaps:    ceiling,
		Signals:     req.Signals,
		Intent:      req.Intent,
	})
	if !proposal.Available() {
		slog.Info("swap proposal unavailable", "user", req.UserID, "date", req.Date, "reason", proposal.Reason)
		return &SwapResult{Ceiling: ceiling, Reason: proposal.Reason}, nil
	}

	doc := proposal.Doc
	doc.Date = req.Date

	// Clamp the untrusted count. Excess replacements are dropped, never
	// silently applied.
	if doc.SwapCount > ceiling {
		slog.Warn("clamping swap count to ceiling",
			"user", req.UserID, "proposed", doc.SwapCount, "ceiling", ceiling)
		doc.SwapCount = ceiling
	}
	if len(doc.Replacements) > doc.SwapCount {
		doc.Replacements = doc.Replacements[:doc.SwapCount]
	}

	if ok, errs := e.rules.ValidateSwapPlan(doc, pending, tc); !ok {
		slog.Info("swap candidate rejected", "user", req.UserID, "date", req.Date, "violations", len(errs))
		return &SwapResult{Ceiling: ceiling, Errors: errs}, nil
	}

	return &SwapResult{Doc: doc, Ceiling: ceiling}, nil
}

// ValidateSwapPlan re-validates a swap document against the current pending
// snapshot and time context, re-deriving the ceiling independently.
func (e *Engine) ValidateSwapPlan(ctx context.Context, userID, date string, doc *types.SwapDocument) (bool, []string, error) {
	profile, err := e.store.EnsureProfile(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	tc := e.policy.ComputeForProfile(profile)

	pending, err := e.store.ListPendingMissions(ctx, userID, date)
	if err != nil {
		return false, nil, err
	}
	ok, errs := e.rules.ValidateSwapPlan(doc, pending, tc)
	return ok, errs, nil
}

// ApplySwaps validates and applies a swap document. A zero-swap document is
// a no-op success. The pending snapshot and the ceiling are both re-derived
// here: the document is untrusted input even when it came from ProposeSwaps
// moments earlier.
func (e *Engine) ApplySwaps(ctx context.Context, req SwapRequest, doc *types.SwapDocument) (*SwapApplied, error) {
	if doc == nil {
		return nil, fmt.Errorf("swap document is required")
	}

	ok, errs, err := e.ValidateSwapPlan(ctx, req.UserID, req.Date, doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &SwapApplied{Errors: errs}, nil
	}
	if doc.SwapCount == 0 {
		return &SwapApplied{}, nil
	}

	source := req.Source
	if source == "" {
		source = "engine"
	}
	outcome, err := e.store.ApplySwaps(ctx, req.UserID, req.Date, source, doc)
	if err != nil {
		return nil, err
	}
	return &SwapApplied{
		Run:             outcome.Run,
		ReplacedTitles:  outcome.ReplacedTitles,
		CreatedMissions: outcome.CreatedMissions,
		CreatedMicros:   outcome.CreatedMicros,
	}, nil
}

// SwapApplied reports what ApplySwaps did. Errors set means nothing was
// mutated.
type SwapApplied struct {
	Run             *types.PlanRun
	ReplacedTitles  []string
	CreatedMissions int
	CreatedMicros   int
	Errors          []string
}

// Applied reports whether the document passed validation.
func (r *SwapApplied) Applied() bool { return len(r.Errors) == 0 }
