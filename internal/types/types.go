// Package types defines the core data model for the Sunstone planning engine:
// missions, assignments, plan runs, and user profiles.
package types

import (
	"fmt"
	"time"
)

// Category classifies a mission into one of the fixed habit areas.
type Category string

const (
	CategoryStudy      Category = "study"
	CategoryFitness    Category = "fitness"
	CategorySleep      Category = "sleep"
	CategoryNutrition  Category = "nutrition"
	CategoryReflection Category = "reflection"
	CategorySocial     Category = "social"
	CategoryChores     Category = "chores"

	// CategoryMicro marks a <=5 minute companion mission attached to a parent.
	CategoryMicro Category = "micro"

	// CategoryRecovery marks a streak-recovery mission injected by the
	// streak engine. Never proposed by the planner.
	CategoryRecovery Category = "recovery"
)

// PlannableCategories are the categories a candidate plan or swap may
// propose at the top level. Micro and recovery missions are created by the
// engine itself, never accepted from a proposal document.
var PlannableCategories = []Category{
	CategoryStudy,
	CategoryFitness,
	CategorySleep,
	CategoryNutrition,
	CategoryReflection,
	CategorySocial,
	CategoryChores,
}

// WindDownCategories are the only categories allowed once the user's
// day-end cutoff has passed.
var WindDownCategories = []Category{
	CategoryReflection,
	CategorySleep,
}

// IsPlannable reports whether the category may appear in a proposal document.
func (c Category) IsPlannable() bool {
	for _, pc := range PlannableCategories {
		if c == pc {
			return true
		}
	}
	return false
}

// IsWindDownSafe reports whether the category is allowed during wind-down.
func (c Category) IsWindDownSafe() bool {
	for _, wc := range WindDownCategories {
		if c == wc {
			return true
		}
	}
	return false
}

// Difficulty rates how demanding a mission is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid reports whether the difficulty is one of the known values.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// AssignmentStatus is the lifecycle state of an assignment.
// Status only moves forward: pending -> completed or pending -> archived.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentArchived  AssignmentStatus = "archived"
)

// CanTransitionTo reports whether moving to the target status is a legal
// forward transition. Completed and archived are terminal.
func (s AssignmentStatus) CanTransitionTo(target AssignmentStatus) bool {
	if s != AssignmentPending {
		return false
	}
	return target == AssignmentCompleted || target == AssignmentArchived
}

// PlanRunKind distinguishes the three plan run flavors.
type PlanRunKind string

const (
	// KindFullPlan replaces the whole day and supersedes prior full plans.
	KindFullPlan PlanRunKind = "full_plan"

	// KindSwap replaces a bounded number of pending missions and coexists
	// with the assigned full plan.
	KindSwap PlanRunKind = "swap"

	// KindParty adds roster-driven companion missions alongside the plan.
	KindParty PlanRunKind = "party"
)

// PlanRunStatus is the lifecycle state of a plan run.
type PlanRunStatus string

const (
	PlanRunPreviewed  PlanRunStatus = "previewed"
	PlanRunAssigned   PlanRunStatus = "assigned"
	PlanRunSuperseded PlanRunStatus = "superseded"
)

// IsTerminal reports whether the run can never change status again.
func (s PlanRunStatus) IsTerminal() bool {
	return s == PlanRunSuperseded
}

// MicroMaxMinutes is the duration ceiling for a mission to count as micro.
const MicroMaxMinutes = 5

// MissionMeta is the rationale/provenance blob attached to a mission at
// creation time. Immutable once the mission exists.
type MissionMeta struct {
	// Why records the planner's rationale for generating this mission.
	Why string `json:"why,omitempty"`

	// ParentTitle and ParentCategory link a micro companion back to the
	// mission it was generated alongside. Read by the micro completion gate.
	ParentTitle    string   `json:"parent_title,omitempty"`
	ParentCategory Category `json:"parent_category,omitempty"`

	// ReplacedTitle records which mission a swap replacement retired.
	ReplacedTitle string `json:"replaced_title,omitempty"`

	// FromPlanRunID is the run that created this mission.
	FromPlanRunID string `json:"from_plan_run_id,omitempty"`

	// PartyMember is set on missions suggested by a party roster member.
	PartyMember *PartyMember `json:"party_member,omitempty"`
}

// Mission is an immutable task record created when a plan is assigned or a
// swap is applied. Corrections happen via new missions, never in-place
// edits, so completion audits stay trustworthy.
type Mission struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Category        Category    `json:"category"`
	Difficulty      Difficulty  `json:"difficulty"`
	DurationMinutes int         `json:"duration_minutes"`
	Reward          int         `json:"reward"`
	Meta            MissionMeta `json:"meta"`

	// SystemGenerated distinguishes planner output from user-authored content.
	SystemGenerated bool `json:"system_generated"`

	// Date is the calendar date (YYYY-MM-DD) the mission was generated for.
	Date string `json:"date"`

	CreatedAt time.Time `json:"created_at"`
}

// IsMicro reports whether the mission qualifies for the micro bonus:
// either explicitly categorized micro, or short enough to count as one.
func (m *Mission) IsMicro() bool {
	if m.Category == CategoryMicro {
		return true
	}
	return m.DurationMinutes > 0 && m.DurationMinutes <= MicroMaxMinutes
}

// Proof is the evidence blob stamped onto an assignment at completion time.
type Proof map[string]any

// Assignment binds a mission to a user for a date. At most one assignment
// exists per (user, mission).
type Assignment struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	MissionID string           `json:"mission_id"`
	Date      string           `json:"date"`
	Status    AssignmentStatus `json:"status"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Proof       Proof      `json:"proof,omitempty"`

	// UsedStreakShield is set when completing this assignment consumed a
	// recovery shield.
	UsedStreakShield bool `json:"used_streak_shield"`

	// PlanRunID is the run that created this assignment.
	PlanRunID string `json:"plan_run_id"`

	CreatedAt time.Time `json:"created_at"`
}

// RunMeta holds the candidate document, the time-policy snapshot taken at
// propose time, and post-hoc counters for observability.
type RunMeta struct {
	Plan  *PlanDocument  `json:"plan,omitempty"`
	Swaps *SwapDocument  `json:"swaps,omitempty"`
	Party *PartyDocument `json:"party,omitempty"`

	TimeContext *TimeContext `json:"time_context,omitempty"`
	MinutesCap  int          `json:"minutes_cap,omitempty"`

	CreatedMissions     int    `json:"created_missions,omitempty"`
	CreatedMicros       int    `json:"created_micros,omitempty"`
	ArchivedAssignments int    `json:"archived_assignments,omitempty"`
	SupersededRunID     string `json:"superseded_run_id,omitempty"`
}

// PlanRun is one attempt to populate a day. Append-only: superseded runs
// are retained for audit, never deleted.
type PlanRun struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Date   string `json:"date"`

	// Version increases monotonically within (user, date, kind).
	Version int `json:"version"`

	// Source names the surface that triggered the run (e.g. "cli").
	Source string `json:"source"`

	Kind   PlanRunKind   `json:"kind"`
	Status PlanRunStatus `json:"status"`
	Meta   RunMeta       `json:"meta"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PartyMember is one member of the user's party roster.
type PartyMember struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Emoji string `json:"emoji,omitempty"`
}

// ProfileSettings is per-user configuration stored alongside the profile.
type ProfileSettings struct {
	PartyRoster []PartyMember `json:"party_roster,omitempty"`
}

// Profile holds per-user planning configuration and streak state.
type Profile struct {
	UserID string `json:"user_id"`

	// DayEndLocal is the local day-end cutoff as "HH:MM". Empty means the
	// default (21:30).
	DayEndLocal string `json:"day_end_local"`

	StreakCount      int        `json:"streak_count"`
	ShieldsRemaining int        `json:"shields_remaining"`
	LastShieldReset  *time.Time `json:"last_shield_reset,omitempty"`

	Settings ProfileSettings `json:"settings"`
}

// TimeContext is a snapshot of the time policy for one user at one instant.
// Effective values subtract the safety buffer, floored at zero, so every
// downstream consumer applies one consistent margin.
type TimeContext struct {
	Now      time.Time `json:"now"`
	Cutoff   time.Time `json:"cutoff"`
	Midnight time.Time `json:"midnight"`

	MinutesToCutoff   int `json:"minutes_to_cutoff"`
	MinutesToMidnight int `json:"minutes_to_midnight"`

	EffectiveMinutesToCutoff   int `json:"effective_minutes_to_cutoff"`
	EffectiveMinutesToMidnight int `json:"effective_minutes_to_midnight"`
}

// WindDownActive reports whether the buffered cutoff window has closed.
func (tc *TimeContext) WindDownActive() bool {
	return tc.EffectiveMinutesToCutoff == 0
}

// BindingHorizonMinutes returns the effective minutes remaining in whichever
// window currently binds: the cutoff while it is still open, the midnight
// window once wind-down is active.
func (tc *TimeContext) BindingHorizonMinutes() int {
	if tc.WindDownActive() {
		return tc.EffectiveMinutesToMidnight
	}
	return tc.EffectiveMinutesToCutoff
}

// SwapCeiling returns how many swaps the time policy currently allows:
// 1 with under 15 effective minutes left, 2 under 30, otherwise 3.
func (tc *TimeContext) SwapCeiling() int {
	mins := tc.BindingHorizonMinutes()
	switch {
	case mins < 15:
		return 1
	case mins < 30:
		return 2
	default:
		return 3
	}
}

func (tc *TimeContext) String() string {
	return fmt.Sprintf("cutoff=%dm midnight=%dm winddown=%t",
		tc.EffectiveMinutesToCutoff, tc.EffectiveMinutesToMidnight, tc.WindDownActive())
}
