package types

import "context"

// PlanDocument is a candidate full-day plan as returned by the proposal
// collaborator (or a deterministic fallback), before validation. It is the
// typed boundary for what used to be a loose JSON blob: parsed and checked
// once, then passed by value through the pipeline.
type PlanDocument struct {
	Missions []MissionDraft `json:"missions"`
}

// TotalMinutes sums the top-level mission durations. Micro companions do
// not count against the daily minutes cap.
func (d *PlanDocument) TotalMinutes() int {
	total := 0
	for _, m := range d.Missions {
		total += m.DurationMinutes
	}
	return total
}

// MissionDraft is one proposed mission inside a candidate document.
type MissionDraft struct {
	Title           string     `json:"title"`
	Category        Category   `json:"category"`
	Difficulty      Difficulty `json:"difficulty"`
	DurationMinutes int        `json:"duration_minutes"`
	Reward          int        `json:"reward"`

	// Why is the planner's rationale, carried into MissionMeta on creation.
	Why string `json:"why_this,omitempty"`

	// Micro is an optional <=5 minute companion created alongside the
	// mission. Mandatory on swap replacements.
	Micro *MicroDraft `json:"micro,omitempty"`
}

// MicroDraft describes a micro companion inside a draft.
type MicroDraft struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
	Reward          int    `json:"reward,omitempty"`
}

// SwapDocument is a candidate swap set: a bounded number of pending
// missions to retire, each with a proposed replacement.
type SwapDocument struct {
	Date         string            `json:"date,omitempty"`
	SwapCount    int               `json:"swap_count"`
	Replacements []SwapReplacement `json:"replacements"`

	// NoSwapReason must be present when SwapCount is zero.
	NoSwapReason string `json:"no_swap_reason,omitempty"`
}

// SwapReplacement pairs a pending mission title with its proposed successor.
type SwapReplacement struct {
	ReplaceTitle string       `json:"replace_title"`
	Reason       string       `json:"reason,omitempty"`
	NewMission   MissionDraft `json:"new_mission"`
}

// PartyDocument is a roster-driven suggestion set for a party run.
type PartyDocument struct {
	Date        string            `json:"date"`
	Count       int               `json:"count"`
	Suggestions []PartySuggestion `json:"suggestions"`
	Notes       string            `json:"notes,omitempty"`
}

// PartySuggestion is one roster member's proposed mission.
type PartySuggestion struct {
	Member  PartyMember  `json:"member"`
	Mission MissionDraft `json:"mission"`
	Reason  string       `json:"reason,omitempty"`
}

// PendingMission is the slice of assignment state the swap engine exposes
// to the proposal collaborator: enough to pick targets, nothing mutable.
type PendingMission struct {
	AssignmentID    string   `json:"-"`
	Title           string   `json:"title"`
	Category        Category `json:"category"`
	DurationMinutes int      `json:"duration_minutes"`
	Reward          int      `json:"reward"`
}

// PlannerContext is the structured context document handed to the proposal
// collaborator for a full-day plan.
type PlannerContext struct {
	UserID      string         `json:"user_id"`
	Date        string         `json:"date"`
	MinutesCap  int            `json:"minutes_cap"`
	TimeContext *TimeContext   `json:"time_context"`
	StreakCount int            `json:"streak_count"`
	Signals     map[string]any `json:"signals,omitempty"`
	Intent      string         `json:"intent,omitempty"`
}

// SwapContext is the structured context for a swap proposal.
type SwapContext struct {
	UserID      string           `json:"user_id"`
	Date        string           `json:"date"`
	MinutesCap  int              `json:"minutes_cap"`
	TimeContext *TimeContext     `json:"time_context"`
	Pending     []PendingMission `json:"pending"`

	// MaxSwaps is the ceiling derived from the time policy. The collaborator
	// is told the ceiling but never trusted to honor it.
	MaxSwaps int `json:"max_swaps"`

	Signals map[string]any `json:"signals,omitempty"`
	Intent  string         `json:"intent,omitempty"`
}

// PlanProposal is the tagged result of a plan proposal call. Either Doc is
// set, or Reason explains why the collaborator had nothing to offer.
// Collaborator failure is never an error: callers degrade to "nothing
// generated".
type PlanProposal struct {
	Doc    *PlanDocument
	Reason string
}

// Available reports whether the collaborator produced a document.
func (p PlanProposal) Available() bool { return p.Doc != nil }

// Unavailable builds the no-result sentinel with an explanation.
func Unavailable(reason string) PlanProposal {
	return PlanProposal{Reason: reason}
}

// SwapProposal is the tagged result of a swap proposal call.
type SwapProposal struct {
	Doc    *SwapDocument
	Reason string
}

// Available reports whether the collaborator produced a document.
func (p SwapProposal) Available() bool { return p.Doc != nil }

// SwapUnavailable builds the no-result sentinel with an explanation.
func SwapUnavailable(reason string) SwapProposal {
	return SwapProposal{Reason: reason}
}

// Proposer is the external generative collaborator that drafts candidate
// plan and swap documents. Implementations must respect the context
// deadline and report failure through the tagged results, not errors.
type Proposer interface {
	ProposePlan(ctx context.Context, pc *PlannerContext) PlanProposal
	ProposeSwaps(ctx context.Context, sc *SwapContext) SwapProposal
}
